package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db       *gorm.DB
	ownerID  string
	svc      *OrderService
	customer *models.Customer
	k1, k2   *models.Karigar
}

func setupOrders(t *testing.T) orderFixture {
	t.Helper()
	db, owner := setupShop(t)
	ctx := context.Background()

	customer, err := NewCustomerService(db, nop).Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "42101", BookNo: "7"})
	require.NoError(t, err)
	karigars := NewKarigarService(db, nop)
	k1, err := karigars.Add(ctx, owner.ID, KarigarInput{Name: "Bashir", Phone: "0300", KarigarType: []string{"Coat"}})
	require.NoError(t, err)
	k2, err := karigars.Add(ctx, owner.ID, KarigarInput{Name: "Karim", Phone: "0301", KarigarType: []string{"Coat"}})
	require.NoError(t, err)

	return orderFixture{db: db, ownerID: owner.ID, svc: NewOrderService(db, nop), customer: customer, k1: k1, k2: k2}
}

func (f orderFixture) input(subID string) OrderInput {
	return OrderInput{CustomerID: f.customer.ID, BookingNo: "100", SubID: subID, Type: "Coat"}
}

func (f orderFixture) assignedOrders(t *testing.T, k *models.Karigar) []string {
	t.Helper()
	var loaded models.Karigar
	require.NoError(t, f.db.Preload("Assignments").First(&loaded, "id = ?", k.ID).Error)
	return loaded.AssignedOrders
}

// backdate moves an order's creation time so ordering does not depend on clock resolution
func (f orderFixture) backdate(t *testing.T, id string, age time.Duration) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", id).
		UpdateColumn("created_at", time.Now().Add(-age)).Error)
}

func TestCreateOrder(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	in := f.input("S1")
	in.KarigarID = f.k1.ID
	in.Measurements = map[string]interface{}{"chest": "40"}
	in.Cuff = map[string]interface{}{"lengthValue": "9"}
	in.Details = map[string]interface{}{"total": "5000"}

	view, err := f.svc.Create(ctx, f.ownerID, in)
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "S1", view.SubID)
	assert.False(t, view.IsSubOrder)
	assert.Nil(t, view.ParentOrderID)
	assert.Equal(t, "Pending", view.Details["status"])
	assert.Equal(t, "5000", view.Details["total"])
	assert.Equal(t, "", view.Details["deliveryDate"])
	assert.Equal(t, "40", view.Measurements["chest"])
	assert.Equal(t, "9", view.Cuff["lengthValue"])
	assert.Equal(t, []interface{}{}, view.Cuff["styleSelections"])

	assert.Equal(t, CustomerSummary{
		ID: f.customer.ID, CustomerID: "A-001", Name: "Ali", Phone: "0300", CNIC: "42101", BookNo: "7",
	}, view.Customer)
	require.NotNil(t, view.Karigar)
	assert.Equal(t, KarigarSummary{ID: f.k1.ID, Name: "Bashir", KarigarID: "B-001"}, *view.Karigar)

	assert.Equal(t, []string{view.ID}, f.assignedOrders(t, f.k1))
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.ownerID, OrderInput{BookingNo: "1", Type: "Coat"})
	se := requireKind(t, err, KindMissingField)
	assert.Equal(t, "Missing required fields: customerId, subId", se.Message)

	bad := f.input("S1")
	bad.CustomerID = "nobody"
	_, err = f.svc.Create(ctx, f.ownerID, bad)
	se = requireKind(t, err, KindNotFound)
	assert.Equal(t, "Customer not found", se.Message)

	bad = f.input("S1")
	bad.KarigarID = "nobody"
	_, err = f.svc.Create(ctx, f.ownerID, bad)
	se = requireKind(t, err, KindNotFound)
	assert.Equal(t, "Karigar not found", se.Message)

	bad = f.input("S1")
	bad.IsSubOrder = true
	_, err = f.svc.Create(ctx, f.ownerID, bad)
	se = requireKind(t, err, KindMissingField)
	assert.Equal(t, "Missing required fields: parentOrderId", se.Message)

	bad = f.input("S1")
	bad.IsSubOrder = true
	bad.ParentOrderID = "nope"
	_, err = f.svc.Create(ctx, f.ownerID, bad)
	se = requireKind(t, err, KindNotFound)
	assert.Equal(t, "Parent order with ID nope not found", se.Message)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateOrderDuplicateSubID(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	parent, err := f.svc.Create(ctx, f.ownerID, f.input("S100"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.ownerID, f.input("S100"))
	se := requireKind(t, err, KindDuplicateIdentifier)
	assert.Equal(t, "Order with subId S100 already exists", se.Message)

	sub := f.input("S101")
	sub.IsSubOrder = true
	sub.ParentOrderID = parent.ID
	_, err = f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)

	// subIds of sub-orders are taken too
	_, err = f.svc.Create(ctx, f.ownerID, f.input("S101"))
	requireKind(t, err, KindDuplicateIdentifier)
}

func TestCreateSubOrderUnderSubOrderIsRejected(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	parent, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	sub := f.input("S2")
	sub.IsSubOrder = true
	sub.ParentOrderID = parent.ID
	child, err := f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)
	assert.True(t, child.IsSubOrder)
	assert.Equal(t, parent.ID, *child.ParentOrderID)

	nested := f.input("S3")
	nested.IsSubOrder = true
	nested.ParentOrderID = child.ID
	_, err = f.svc.Create(ctx, f.ownerID, nested)
	requireKind(t, err, KindNotFound)
}

func TestListOrders(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	older, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	newer, err := f.svc.Create(ctx, f.ownerID, f.input("S2"))
	require.NoError(t, err)
	f.backdate(t, older.ID, 2*time.Hour)
	f.backdate(t, newer.ID, time.Hour)

	for i, subID := range []string{"S2-b", "S2-a"} {
		in := f.input(subID)
		in.IsSubOrder = true
		in.ParentOrderID = newer.ID
		in.KarigarID = f.k2.ID
		sub, err := f.svc.Create(ctx, f.ownerID, in)
		require.NoError(t, err)
		f.backdate(t, sub.ID, time.Duration(30-i)*time.Minute)
	}

	views, err := f.svc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, views, 2, "sub-orders are nested, not listed at the top")

	assert.Equal(t, "S2", views[0].SubID, "newest first")
	assert.Equal(t, "S1", views[1].SubID)
	assert.Empty(t, views[1].SubOrders)

	subs := views[0].SubOrders
	require.Len(t, subs, 2)
	assert.Equal(t, "S2-b", subs[0].SubID, "sub-orders oldest first")
	assert.Equal(t, "S2-a", subs[1].SubID)
	assert.Equal(t, "Karim", subs[0].Karigar.Name)
	assert.Equal(t, "Pending", subs[0].Details["status"])
	assert.Equal(t, "Ali", subs[0].Customer.Name)
}

func TestListOrdersUnknownCustomer(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	require.NoError(t, f.db.Where("id = ?", f.customer.ID).Delete(&models.Customer{}).Error)

	views, err := f.svc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "N/A", views[0].Customer.CustomerID)
	assert.Equal(t, "Unknown", views[0].Customer.Name)
	assert.Nil(t, views[0].Karigar)
}

func TestSearchOrders(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	zara, err := NewCustomerService(f.db, nop).Add(ctx, f.ownerID, CustomerInput{Name: "Zara", Phone: "0302", CNIC: "9"})
	require.NoError(t, err)

	parent, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	sub := f.input("S1-1")
	sub.IsSubOrder = true
	sub.ParentOrderID = parent.ID
	_, err = f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)

	other := f.input("S2")
	other.CustomerID = zara.ID
	_, err = f.svc.Create(ctx, f.ownerID, other)
	require.NoError(t, err)

	views, err := f.svc.Search(ctx, f.ownerID, "al")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "S1", views[0].SubID)
	assert.Len(t, views[0].SubOrders, 1)

	views, err = f.svc.Search(ctx, f.ownerID, "x")
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.svc.Search(ctx, f.ownerID, "")
	se := requireKind(t, err, KindMissingField)
	assert.Equal(t, "Customer name query parameter is required", se.Message)
}

func TestUpdateOrderReassignsKarigar(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	in := f.input("S1")
	in.KarigarID = f.k1.ID
	created, err := f.svc.Create(ctx, f.ownerID, in)
	require.NoError(t, err)

	in.KarigarID = f.k2.ID
	updated, err := f.svc.Update(ctx, f.ownerID, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Karim", updated.Karigar.Name)
	assert.Empty(t, f.assignedOrders(t, f.k1))
	assert.Equal(t, []string{created.ID}, f.assignedOrders(t, f.k2))

	// Same karigar again does not duplicate the assignment
	_, err = f.svc.Update(ctx, f.ownerID, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, f.assignedOrders(t, f.k2))

	in.KarigarID = ""
	updated, err = f.svc.Update(ctx, f.ownerID, created.ID, in)
	require.NoError(t, err)
	assert.Nil(t, updated.Karigar)
	assert.Empty(t, f.assignedOrders(t, f.k2))

	in.KarigarID = "ghost"
	_, err = f.svc.Update(ctx, f.ownerID, created.ID, in)
	requireKind(t, err, KindNotFound)
}

func TestUpdateOrderMergesContent(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	in := f.input("S1")
	in.Collar = map[string]interface{}{"collarPosition": "high"}
	in.Details = map[string]interface{}{"status": "Stitching", "total": "100"}
	in.PdfData = "pdf-v1"
	created, err := f.svc.Create(ctx, f.ownerID, in)
	require.NoError(t, err)

	update := f.input("S1-renamed")
	update.BookingNo = "200"
	update.Patti = map[string]interface{}{"design": "plain"}
	update.Details = map[string]interface{}{"advanced": "50"}
	updated, err := f.svc.Update(ctx, f.ownerID, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, "S1-renamed", updated.SubID)
	assert.Equal(t, "200", updated.BookingNo)
	assert.Equal(t, "high", updated.Collar["collarPosition"], "unsupplied blocks keep their value")
	assert.Equal(t, "plain", updated.Patti["design"])
	assert.Equal(t, "Stitching", updated.Details["status"], "status falls back to the stored one")
	assert.Equal(t, "50", updated.Details["advanced"])
	assert.Equal(t, "", updated.Details["total"], "details are replaced, not merged")
	assert.Equal(t, "pdf-v1", updated.PdfData)
	assert.False(t, updated.IsSubOrder)
}

func TestUpdateOrderLookup(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	parent, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	sub := f.input("S2")
	sub.IsSubOrder = true
	sub.ParentOrderID = parent.ID
	child, err := f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.ownerID, "missing", f.input("S9"))
	se := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Order not found", se.Message)

	// A sub-order must be addressed through its parent
	_, err = f.svc.Update(ctx, f.ownerID, child.ID, f.input("S2"))
	requireKind(t, err, KindNotFound)

	lost := f.input("S2")
	lost.IsSubOrder = true
	lost.ParentOrderID = "missing"
	_, err = f.svc.Update(ctx, f.ownerID, child.ID, lost)
	se = requireKind(t, err, KindNotFound)
	assert.Equal(t, "Parent order not found", se.Message)

	wrong := f.input("S1")
	wrong.IsSubOrder = true
	wrong.ParentOrderID = parent.ID
	_, err = f.svc.Update(ctx, f.ownerID, parent.ID, wrong)
	se = requireKind(t, err, KindNotFound)
	assert.Equal(t, "Sub-order not found", se.Message)

	sub.Type = "Waist Coat"
	updated, err := f.svc.Update(ctx, f.ownerID, child.ID, sub)
	require.NoError(t, err)
	assert.Equal(t, "Waist Coat", updated.Type)
	assert.True(t, updated.IsSubOrder)
	assert.Equal(t, parent.ID, *updated.ParentOrderID)

	dup := f.input("S1")
	dup.IsSubOrder = true
	dup.ParentOrderID = parent.ID
	_, err = f.svc.Update(ctx, f.ownerID, child.ID, dup)
	se = requireKind(t, err, KindDuplicateIdentifier)
	assert.Equal(t, "Order with subId S1 already exists", se.Message)
}

func TestDeleteSubOrderKeepsSiblings(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	parent, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	var children []*OrderView
	for _, subID := range []string{"S1-a", "S1-b"} {
		in := f.input(subID)
		in.IsSubOrder = true
		in.ParentOrderID = parent.ID
		in.KarigarID = f.k1.ID
		child, err := f.svc.Create(ctx, f.ownerID, in)
		require.NoError(t, err)
		children = append(children, child)
	}

	require.NoError(t, f.svc.Delete(ctx, f.ownerID, children[0].ID))

	views, err := f.svc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].SubOrders, 1)
	assert.Equal(t, "S1-b", views[0].SubOrders[0].SubID)
	assert.Equal(t, []string{children[1].ID}, f.assignedOrders(t, f.k1))
}

func TestDeleteOrderCascadesToSubOrders(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	in := f.input("S1")
	in.KarigarID = f.k1.ID
	parent, err := f.svc.Create(ctx, f.ownerID, in)
	require.NoError(t, err)
	sub := f.input("S1-a")
	sub.IsSubOrder = true
	sub.ParentOrderID = parent.ID
	sub.KarigarID = f.k2.ID
	_, err = f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.ownerID, parent.ID))

	var orders, assignments int64
	f.db.Model(&models.Order{}).Count(&orders)
	f.db.Model(&models.KarigarAssignment{}).Count(&assignments)
	assert.Zero(t, orders)
	assert.Zero(t, assignments)

	err = f.svc.Delete(ctx, f.ownerID, parent.ID)
	se := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Order not found", se.Message)

	// The subId is free again
	_, err = f.svc.Create(ctx, f.ownerID, f.input("S1-a"))
	assert.NoError(t, err)
}

func TestSubOrdersByCustomer(t *testing.T) {
	f := setupOrders(t)
	ctx := context.Background()

	coat, err := f.svc.Create(ctx, f.ownerID, f.input("S1"))
	require.NoError(t, err)
	pant := f.input("S2")
	pant.Type = "Pant"
	_, err = f.svc.Create(ctx, f.ownerID, pant)
	require.NoError(t, err)
	sub := f.input("S1-a")
	sub.IsSubOrder = true
	sub.ParentOrderID = coat.ID
	_, err = f.svc.Create(ctx, f.ownerID, sub)
	require.NoError(t, err)

	coats, err := f.svc.SubOrders(ctx, f.ownerID, f.customer.ID, "Coat")
	require.NoError(t, err)
	require.Len(t, coats, 2)
	var subs int
	for _, o := range coats {
		assert.Equal(t, "Coat", o.Type)
		if o.IsSubOrder {
			subs++
			assert.Equal(t, coat.ID, *o.ParentOrderID)
		}
	}
	assert.Equal(t, 1, subs)

	all, err := f.svc.SubOrders(ctx, f.ownerID, f.customer.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := f.svc.SubOrders(ctx, f.ownerID, "someone-else", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.SubOrders(ctx, f.ownerID, "", "Coat")
	se := requireKind(t, err, KindMissingField)
	assert.Equal(t, "customerId query parameter is required", se.Message)
}
