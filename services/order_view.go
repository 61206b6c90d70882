package services

import (
	"encoding/json"
	"time"

	"github.com/kendall-kelly/tailor-shop-api/models"
	"gorm.io/datatypes"
)

// Defaults every order view carries, so clients can bind form fields
// without null checks. Stored values always win over these.

type detailsDefaults struct {
	Status       string `json:"status"`
	BookingDate  string `json:"bookingDate"`
	DeliveryDate string `json:"deliveryDate"`
	Total        string `json:"total"`
	Advanced     string `json:"advanced"`
	Remaining    string `json:"remaining"`
	Discount     string `json:"discount"`
	Quantity     string `json:"quantity"`
	Address      string `json:"address"`
}

type collarDefaults struct {
	SelectedMeasurement string `json:"selectedMeasurement"`
	CollarPosition      string `json:"collarPosition"`
}

type pattiDefaults struct {
	Design        string `json:"design"`
	Length        string `json:"length"`
	Width         string `json:"width"`
	Buttons       string `json:"buttons"`
	SelectedImage string `json:"selectedImage"`
}

type cuffDefaults struct {
	LengthValue          string   `json:"lengthValue"`
	SelectedDropdownCuff string   `json:"selectedDropdownCuff"`
	StyleSelections      []string `json:"styleSelections"`
	SelectedGroupTwo     string   `json:"selectedGroupTwo"`
	CuffImages           []string `json:"cuffImages"`
}

type pocketDefaults struct {
	NoOfPockets     string   `json:"noOfPockets"`
	PocketSize      string   `json:"pocketSize"`
	KandeSeJaib     string   `json:"kandeSeJaib"`
	SelectedButton  string   `json:"selectedButton"`
	StyleSelections []string `json:"styleSelections"`
	PocketImages    []string `json:"pocketImages"`
}

type shalwarDefaults struct {
	PanchaChorai    string   `json:"panchaChorai"`
	SelectedImage   string   `json:"selectedImage"`
	StyleSelections []string `json:"styleSelections"`
	Measurement     string   `json:"measurement"`
}

type selectedButtonDefaults struct {
	SelectedButton string `json:"selectedButton"`
}

type cutterDefaults struct {
	SelectedButtons []string `json:"selectedButtons"`
}

var (
	detailsTemplate = toMap(detailsDefaults{Status: models.DefaultOrderStatus})
	blockTemplates  = map[string]map[string]interface{}{
		"collar": toMap(collarDefaults{}),
		"patti":  toMap(pattiDefaults{}),
		"cuff": toMap(cuffDefaults{
			StyleSelections: []string{},
			CuffImages:      []string{},
		}),
		"pocket": toMap(pocketDefaults{
			StyleSelections: []string{},
			PocketImages:    []string{},
		}),
		"shalwar": toMap(shalwarDefaults{StyleSelections: []string{}}),
		"silai":   toMap(selectedButtonDefaults{}),
		"button":  toMap(selectedButtonDefaults{}),
		"cutter":  toMap(cutterDefaults{SelectedButtons: []string{}}),
	}
)

func toMap(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

// withDefaults overlays stored on a copy of template
func withDefaults(template map[string]interface{}, stored datatypes.JSONMap) map[string]interface{} {
	out := make(map[string]interface{}, len(template)+len(stored))
	for k, v := range template {
		if s, ok := v.([]interface{}); ok {
			v = append([]interface{}{}, s...)
		}
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out
}

// CustomerSummary is the customer as embedded in an order view
type CustomerSummary struct {
	ID         string `json:"id,omitempty"`
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	CNIC       string `json:"cnic"`
	BookNo     string `json:"bookNo"`
}

// unknownCustomer stands in for a customer that no longer resolves
var unknownCustomer = CustomerSummary{CustomerID: "N/A", Name: "Unknown"}

func summarizeCustomer(c *models.Customer) CustomerSummary {
	if c == nil {
		return unknownCustomer
	}
	return CustomerSummary{
		ID:         c.ID,
		CustomerID: c.CustomerCode,
		Name:       c.Name,
		Phone:      c.Phone,
		CNIC:       c.CNIC,
		BookNo:     c.BookNo,
	}
}

// KarigarSummary is the karigar as embedded in an order view
type KarigarSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	KarigarID string `json:"karigarId"`
}

func summarizeKarigar(k *models.Karigar) *KarigarSummary {
	if k == nil {
		return nil
	}
	return &KarigarSummary{ID: k.ID, Name: k.Name, KarigarID: k.KarigarCode}
}

// OrderView is the read projection of an order with resolved references
type OrderView struct {
	ID             string                 `json:"id"`
	SubID          string                 `json:"subId"`
	BookingNo      string                 `json:"bookingNo"`
	Type           string                 `json:"type"`
	IsSubOrder     bool                   `json:"isSubOrder"`
	ParentOrderID  *string                `json:"parentOrderId"`
	PdfData        string                 `json:"pdfData"`
	Customer       CustomerSummary        `json:"customerId"`
	Karigar        *KarigarSummary        `json:"karigar"`
	Measurements   map[string]interface{} `json:"measurements"`
	SelectedImages []models.SelectedImage `json:"selectedImages"`
	Details        map[string]interface{} `json:"details"`
	Collar         map[string]interface{} `json:"collar"`
	Patti          map[string]interface{} `json:"patti"`
	Cuff           map[string]interface{} `json:"cuff"`
	Pocket         map[string]interface{} `json:"pocket"`
	Shalwar        map[string]interface{} `json:"shalwar"`
	Silai          map[string]interface{} `json:"silai"`
	Button         map[string]interface{} `json:"button"`
	Cutter         map[string]interface{} `json:"cutter"`
	SubOrders      []OrderView            `json:"subOrders"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// buildOrderView projects o with its Customer, Karigar and SubOrders
// associations, which must already be loaded.
func buildOrderView(o *models.Order) OrderView {
	details := withDefaults(detailsTemplate, o.Details)
	details["status"] = o.Status()

	view := OrderView{
		ID:             o.ID,
		SubID:          o.SubID,
		BookingNo:      o.BookingNo,
		Type:           o.Type,
		IsSubOrder:     o.IsSubOrder,
		ParentOrderID:  o.ParentOrderID,
		PdfData:        o.PdfData,
		Customer:       summarizeCustomer(o.Customer),
		Karigar:        summarizeKarigar(o.Karigar),
		Measurements:   withDefaults(nil, o.Measurements),
		SelectedImages: nonNilImages(o.SelectedImages),
		Details:        details,
		Collar:         withDefaults(blockTemplates["collar"], o.Collar),
		Patti:          withDefaults(blockTemplates["patti"], o.Patti),
		Cuff:           withDefaults(blockTemplates["cuff"], o.Cuff),
		Pocket:         withDefaults(blockTemplates["pocket"], o.Pocket),
		Shalwar:        withDefaults(blockTemplates["shalwar"], o.Shalwar),
		Silai:          withDefaults(blockTemplates["silai"], o.Silai),
		Button:         withDefaults(blockTemplates["button"], o.Button),
		Cutter:         withDefaults(blockTemplates["cutter"], o.Cutter),
		SubOrders:      make([]OrderView, 0, len(o.SubOrders)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for i := range o.SubOrders {
		view.SubOrders = append(view.SubOrders, buildOrderView(&o.SubOrders[i]))
	}
	return view
}
