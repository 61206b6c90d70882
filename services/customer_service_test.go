package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/kendall-kelly/tailor-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCodes(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	ali, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	assert.Equal(t, "A-001", ali.CustomerCode)

	anum, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "anum", Phone: "0301", CNIC: "2"})
	require.NoError(t, err)
	assert.Equal(t, "A-002", anum.CustomerCode)

	// Same initial keeps the code
	ahmed, err := svc.Update(ctx, owner.ID, ali.ID, CustomerInput{Name: "Ahmed"})
	require.NoError(t, err)
	assert.Equal(t, "A-001", ahmed.CustomerCode)
	assert.Equal(t, "Ahmed", ahmed.Name)
	assert.Equal(t, "0300", ahmed.Phone, "empty fields keep stored values")

	bilal, err := svc.Update(ctx, owner.ID, ali.ID, CustomerInput{Name: "Bilal"})
	require.NoError(t, err)
	assert.Equal(t, "B-001", bilal.CustomerCode)
}

func TestCustomerCodeKeptWhenPunctuationInitialUnchanged(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	c, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "-rashid", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	assert.Equal(t, "--001", c.CustomerCode)

	renamed, err := svc.Update(ctx, owner.ID, c.ID, CustomerInput{Name: "-rafay"})
	require.NoError(t, err)
	assert.Equal(t, "--001", renamed.CustomerCode)
}

func TestCustomerCodesNeverReused(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	ali, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, owner.ID, ali.ID))

	asad, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Asad", Phone: "0300", CNIC: "2"})
	require.NoError(t, err)
	assert.Equal(t, "A-002", asad.CustomerCode)
}

func TestCustomerCodesSkipTakenValues(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	// A row that already holds A-001 without going through the sequence
	require.NoError(t, db.Create(&models.Customer{OwnerID: owner.ID, Name: "Imported", Phone: "1", CNIC: "x", CustomerCode: "A-001"}).Error)

	c, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	assert.Equal(t, "A-002", c.CustomerCode)
}

func TestAddCustomerValidation(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	_, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300"})
	se := requireKind(t, err, KindMissingField)
	assert.Equal(t, "Name, phone, and CNIC are required", se.Message)

	_, err = svc.Add(ctx, owner.ID, CustomerInput{Name: "   ", Phone: "0300", CNIC: "1"})
	requireKind(t, err, KindMissingField)

	_, err = svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner.ID, CustomerInput{Name: "Zara", Phone: "0301", CNIC: "1"})
	se = requireKind(t, err, KindDuplicateIdentifier)
	assert.Equal(t, "Customer with this CNIC already exists", se.Message)

	// CNIC uniqueness is per shop
	other := testutil.CreateOwner(t, db, "other", "secret")
	_, err = svc.Add(ctx, other.ID, CustomerInput{Name: "Zara", Phone: "0301", CNIC: "1"})
	assert.NoError(t, err)
}

func TestSearchAndListCustomers(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	for i, name := range []string{"bilal", "Anum", "ali", "Zara"} {
		_, err := svc.Add(ctx, owner.ID, CustomerInput{Name: name, Phone: "0300", CNIC: string(rune('a' + i))})
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, owner.ID, "A")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "ali", found[0].Name)
	assert.Equal(t, "Anum", found[1].Name)

	_, err = svc.Search(ctx, owner.ID, "")
	se := requireKind(t, err, KindMissingField)
	assert.Equal(t, "Query parameter is required", se.Message)

	all, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"ali", "Anum", "bilal", "Zara"}, names)

	other := testutil.CreateOwner(t, db, "other", "secret")
	none, err := svc.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none, "customers are scoped to their shop")
}

func TestUpdateCustomer(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	ctx := context.Background()

	a, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	b, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Bilal", Phone: "0301", CNIC: "2"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner.ID, "missing", CustomerInput{Name: "X"})
	se := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Customer not found", se.Message)

	_, err = svc.Update(ctx, owner.ID, b.ID, CustomerInput{CNIC: "1"})
	requireKind(t, err, KindDuplicateIdentifier)

	updated, err := svc.Update(ctx, owner.ID, a.ID, CustomerInput{
		CNIC:           "1",
		BookNo:         "B-12",
		SelectedImages: []models.SelectedImage{{ImgSrc: "/img/collar.png", ButtonName: "Collar"}},
	})
	require.NoError(t, err, "keeping its own CNIC is not a duplicate")
	assert.Equal(t, "B-12", updated.BookNo)
	require.Len(t, updated.SelectedImages, 1)
	assert.Equal(t, "Collar", updated.SelectedImages[0].ButtonName)

	// Other shops cannot touch the customer
	other := testutil.CreateOwner(t, db, "other", "secret")
	_, err = svc.Update(ctx, other.ID, a.ID, CustomerInput{Name: "Hacked"})
	requireKind(t, err, KindNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewCustomerService(db, nop)
	orders := NewOrderService(db, nop)
	ctx := context.Background()

	c, err := svc.Add(ctx, owner.ID, CustomerInput{Name: "Ali", Phone: "0300", CNIC: "1"})
	require.NoError(t, err)
	order, err := orders.Create(ctx, owner.ID, OrderInput{CustomerID: c.ID, BookingNo: "1", SubID: "S1", Type: "Coat"})
	require.NoError(t, err)

	err = svc.Delete(ctx, owner.ID, c.ID)
	se := requireKind(t, err, KindReferenceInUse)
	assert.Equal(t, "CUSTOMER_HAS_ORDERS", se.Code)

	require.NoError(t, orders.Delete(ctx, owner.ID, order.ID))
	require.NoError(t, svc.Delete(ctx, owner.ID, c.ID))

	err = svc.Delete(ctx, owner.ID, c.ID)
	requireKind(t, err, KindNotFound)
}
