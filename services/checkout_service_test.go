package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCustomerRepo struct {
	byEmail        map[string]*models.Customer
	contactUpdates int
	upserted       *models.Customer
}

func (f *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if c, ok := f.byEmail[email]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) UpdateContact(ctx context.Context, id uuid.UUID, name, surname string) error {
	f.contactUpdates++
	for _, c := range f.byEmail {
		if c.ID == id {
			c.Name = name
			c.Surname = surname
		}
	}
	return nil
}

func (f *fakeCustomerRepo) UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	f.upserted = customer
	if f.byEmail == nil {
		f.byEmail = map[string]*models.Customer{}
	}
	f.byEmail[customer.Email] = customer
	copied := *customer
	return &copied, nil
}

func (f *fakeCustomerRepo) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return 0, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error) {
	var found []*models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (f *fakeProductRepo) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error { return nil }

func (f *fakeProductRepo) Update(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) { return 0, nil }

type fakeOrderRepo struct {
	created []*models.Order
	updates []bson.M
	matched int64
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeOrderRepo) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) Count(ctx context.Context, filter bson.M) (int64, error) { return 0, nil }

func (f *fakeOrderRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error) {
	f.updates = append(f.updates, updates)
	return f.matched, nil
}

type fakeCounters struct {
	values map[string]int64
}

func (f *fakeCounters) Next(ctx context.Context, name string) (int64, error) {
	if f.values == nil {
		f.values = map[string]int64{}
	}
	f.values[name]++
	return f.values[name], nil
}

type fakeGateway struct {
	lastInput CheckoutSessionInput
	calls     int
	err       error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) ParseWebhook(r *http.Request) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented")
}

func newCheckoutRequest(items []CheckoutItem) *CheckoutRequest {
	req := &CheckoutRequest{
		Items:      items,
		OrderType:  models.OrderTypePickup,
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	}
	req.Customer.Name = "Anna"
	req.Customer.Surname = "Nowak"
	req.Customer.Email = "Anna.Nowak@Example.com"
	return req
}

func newCheckoutFixture(products ...*models.Product) (*CheckoutService, *fakeCustomerRepo, *fakeOrderRepo, *fakeCounters, *fakeGateway) {
	customerRepo := &fakeCustomerRepo{byEmail: map[string]*models.Customer{}}
	productRepo := &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		productRepo.products[p.ID] = p
	}
	orderRepo := &fakeOrderRepo{matched: 1}
	counters := &fakeCounters{}
	gateway := &fakeGateway{}
	service := NewCheckoutService(customerRepo, productRepo, orderRepo, counters, gateway)
	return service, customerRepo, orderRepo, counters, gateway
}

func TestCreateSessionComputesTotals(t *testing.T) {
	productID := uuid.New()
	service, _, orderRepo, _, gateway := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	url, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 2},
	}))
	if svcErr != nil {
		t.Fatalf("unexpected error: %v", svcErr)
	}
	if url != "https://checkout.stripe.test/cs_test_1" {
		t.Fatalf("unexpected redirect url: %q", url)
	}

	if len(orderRepo.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orderRepo.created))
	}
	order := orderRepo.created[0]
	if order.TotalPrice != 20.00 {
		t.Fatalf("expected total 20.00, got %v", order.TotalPrice)
	}
	if order.Status != models.StatusNew || order.IsPaid {
		t.Fatalf("expected new unpaid order, got status=%s isPaid=%v", order.Status, order.IsPaid)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.UnitPrice != 10.00 || item.Quantity != 2 || item.Total != 20.00 {
		t.Fatalf("unexpected line item: %+v", item)
	}

	if gateway.lastInput.OrderID != order.ID.String() {
		t.Fatalf("expected session metadata to carry order id %s, got %s", order.ID, gateway.lastInput.OrderID)
	}
	if len(gateway.lastInput.Lines) != 1 {
		t.Fatalf("expected 1 session line, got %d", len(gateway.lastInput.Lines))
	}
	line := gateway.lastInput.Lines[0]
	if line.UnitAmount != 1000 || line.Quantity != 2 {
		t.Fatalf("expected unit_amount=1000 quantity=2, got %+v", line)
	}

	// The session id is recorded on the order after creation.
	if len(orderRepo.updates) != 1 || orderRepo.updates[0]["stripe_session_id"] != "cs_test_1" {
		t.Fatalf("expected session id recorded on order, got %+v", orderRepo.updates)
	}
}

func TestCreateSessionCreatesUnregisteredCustomer(t *testing.T) {
	productID := uuid.New()
	service, customerRepo, orderRepo, _, _ := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	_, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 1},
	}))
	if svcErr != nil {
		t.Fatalf("unexpected error: %v", svcErr)
	}

	if customerRepo.upserted == nil {
		t.Fatal("expected a customer upsert")
	}
	if customerRepo.upserted.Email != "anna.nowak@example.com" {
		t.Fatalf("expected normalized email, got %q", customerRepo.upserted.Email)
	}
	if customerRepo.upserted.Registered {
		t.Fatal("guest checkout must create an unregistered customer")
	}
	if customerRepo.upserted.CustomerNumber != 1 {
		t.Fatalf("expected customer number 1, got %d", customerRepo.upserted.CustomerNumber)
	}

	snapshot := orderRepo.created[0].Customer
	if snapshot.Email != "anna.nowak@example.com" || snapshot.CustomerID != customerRepo.upserted.ID {
		t.Fatalf("unexpected customer snapshot: %+v", snapshot)
	}
}

func TestCreateSessionReusesExistingCustomer(t *testing.T) {
	productID := uuid.New()
	service, customerRepo, orderRepo, counters, _ := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	existingID := uuid.New()
	customerRepo.byEmail["anna.nowak@example.com"] = &models.Customer{
		ID:             existingID,
		CustomerNumber: 7,
		Name:           "Old",
		Surname:        "Name",
		Email:          "anna.nowak@example.com",
		Registered:     true,
	}

	_, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 1},
	}))
	if svcErr != nil {
		t.Fatalf("unexpected error: %v", svcErr)
	}

	if customerRepo.contactUpdates != 1 {
		t.Fatalf("expected 1 contact update, got %d", customerRepo.contactUpdates)
	}
	if customerRepo.upserted != nil {
		t.Fatal("existing customer must not be re-created")
	}
	if counters.values["customers"] != 0 {
		t.Fatalf("no customer number should be allocated, got %d", counters.values["customers"])
	}

	snapshot := orderRepo.created[0].Customer
	if snapshot.CustomerID != existingID || snapshot.CustomerNumber != 7 {
		t.Fatalf("order must reuse the existing customer, got %+v", snapshot)
	}
	if snapshot.Name != "Anna" || snapshot.Surname != "Nowak" {
		t.Fatalf("name/surname must be refreshed in place, got %+v", snapshot)
	}
}

func TestCreateSessionSkipsUnknownProducts(t *testing.T) {
	productID := uuid.New()
	service, _, orderRepo, _, gateway := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	_, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 1},
		{ID: uuid.New(), Quantity: 3},
	}))
	if svcErr != nil {
		t.Fatalf("unexpected error: %v", svcErr)
	}

	order := orderRepo.created[0]
	if len(order.Items) != 1 {
		t.Fatalf("unknown product must be dropped, got %d items", len(order.Items))
	}
	if order.TotalPrice != 10.00 {
		t.Fatalf("expected total 10.00, got %v", order.TotalPrice)
	}
	if len(gateway.lastInput.Lines) != 1 {
		t.Fatalf("expected 1 session line, got %d", len(gateway.lastInput.Lines))
	}
}

func TestCreateSessionMergesDuplicateCartEntries(t *testing.T) {
	productID := uuid.New()
	service, _, orderRepo, _, _ := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	_, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 1},
		{ID: productID, Quantity: 2},
	}))
	if svcErr != nil {
		t.Fatalf("unexpected error: %v", svcErr)
	}

	order := orderRepo.created[0]
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("duplicate entries must merge, got %+v", order.Items)
	}
	if order.TotalPrice != 30.00 {
		t.Fatalf("expected total 30.00, got %v", order.TotalPrice)
	}
}

func TestCreateSessionProviderFailureMarksOrderFailed(t *testing.T) {
	productID := uuid.New()
	service, _, orderRepo, _, gateway := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})
	gateway.err = errors.New("stripe unavailable")

	_, svcErr := service.CreateSession(context.Background(), newCheckoutRequest([]CheckoutItem{
		{ID: productID, Quantity: 1},
	}))
	if svcErr == nil || svcErr.StatusCode != 500 {
		t.Fatalf("expected a 500 service error, got %v", svcErr)
	}

	// The order stays persisted but is proactively marked failed.
	if len(orderRepo.created) != 1 {
		t.Fatalf("expected the order write to remain visible, got %d", len(orderRepo.created))
	}
	if len(orderRepo.updates) != 1 {
		t.Fatalf("expected 1 compensating update, got %d", len(orderRepo.updates))
	}
	update := orderRepo.updates[0]
	if update["status"] != models.StatusFailed {
		t.Fatalf("expected status failed, got %v", update["status"])
	}
	if update["payment_failure_reason"] != "Payment session creation failed" {
		t.Fatalf("unexpected failure reason: %v", update["payment_failure_reason"])
	}
}

func TestCreateSessionDeliveryRequiresAddress(t *testing.T) {
	productID := uuid.New()
	service, _, orderRepo, _, gateway := newCheckoutFixture(&models.Product{
		ID:    productID,
		Name:  "Margherita",
		Price: 10.00,
	})

	req := newCheckoutRequest([]CheckoutItem{{ID: productID, Quantity: 1}})
	req.OrderType = models.OrderTypeDelivery

	_, svcErr := service.CreateSession(context.Background(), req)
	if svcErr == nil || svcErr.StatusCode != 400 {
		t.Fatalf("expected a 400 service error, got %v", svcErr)
	}
	if len(orderRepo.created) != 0 || gateway.calls != 0 {
		t.Fatal("validation failure must not write or call the provider")
	}
}
