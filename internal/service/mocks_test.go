package service

import (
	"context"
	"fmt"
	"sync"

	"promptpay-checkout/internal/model"
	"promptpay-checkout/internal/repository"

	"gorm.io/datatypes"
)

// fakeOmiseClient lets each test script the gateway's behavior and
// records how it was called.
type fakeOmiseClient struct {
	mu sync.Mutex

	createSourceFn   func(sourceType string, amount int64, currency string) (*model.Source, error)
	createChargeFn   func(amount int64, sourceID, currency string) (*model.Charge, error)
	retrieveChargeFn func(chargeID string) (*model.Charge, error)

	createSourceCalls   int
	createChargeCalls   int
	retrieveChargeCalls int
}

func (f *fakeOmiseClient) CreateSource(_ context.Context, sourceType string, amount int64, currency string) (*model.Source, error) {
	f.mu.Lock()
	f.createSourceCalls++
	f.mu.Unlock()
	if f.createSourceFn == nil {
		return nil, fmt.Errorf("unexpected CreateSource call")
	}
	return f.createSourceFn(sourceType, amount, currency)
}

func (f *fakeOmiseClient) CreateCharge(_ context.Context, amount int64, sourceID, currency string) (*model.Charge, error) {
	f.mu.Lock()
	f.createChargeCalls++
	f.mu.Unlock()
	if f.createChargeFn == nil {
		return nil, fmt.Errorf("unexpected CreateCharge call")
	}
	return f.createChargeFn(amount, sourceID, currency)
}

func (f *fakeOmiseClient) RetrieveCharge(_ context.Context, chargeID string) (*model.Charge, error) {
	f.mu.Lock()
	f.retrieveChargeCalls++
	f.mu.Unlock()
	if f.retrieveChargeFn == nil {
		return nil, fmt.Errorf("unexpected RetrieveCharge call")
	}
	return f.retrieveChargeFn(chargeID)
}

// memOrderRepo is an in-memory OrderRepository. The conditional update is
// atomic under the mutex, mirroring the single guarded UPDATE the real
// store issues.
type memOrderRepo struct {
	mu       sync.Mutex
	orders   map[string]*model.Order // by order id
	byCharge map[string]string       // charge id -> order id
	nextID   int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:   make(map[string]*model.Order),
		byCharge: make(map[string]string),
	}
}

func (m *memOrderRepo) Create(_ context.Context, order *model.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byCharge[order.PaymentChargeID]; dup {
		return "", fmt.Errorf("duplicate charge id %s", order.PaymentChargeID)
	}
	if order.ID == "" {
		m.nextID++
		order.ID = fmt.Sprintf("order-%d", m.nextID)
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.byCharge[order.PaymentChargeID] = order.ID
	return order.ID, nil
}

func (m *memOrderRepo) FindByID(_ context.Context, orderID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) FindByChargeID(_ context.Context, chargeID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orderID, ok := m.byCharge[chargeID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *m.orders[orderID]
	return &cp, nil
}

func (m *memOrderRepo) UpdateStatusIfPending(_ context.Context, orderID string, status model.OrderStatus, details datatypes.JSON) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Status != model.OrderStatusPending {
		return false, nil
	}
	order.Status = status
	order.PaymentDetails = append(datatypes.JSON(nil), details...)
	return true, nil
}

func (m *memOrderRepo) UpdateDetails(_ context.Context, orderID string, details datatypes.JSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.PaymentDetails = append(datatypes.JSON(nil), details...)
	return nil
}

// fakeWebhookEventRepo tracks processed event ids in memory.
type fakeWebhookEventRepo struct {
	mu        sync.Mutex
	processed map[string]string
	failNext  error
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{processed: make(map[string]string)}
}

func (f *fakeWebhookEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return false, err
	}
	_, ok := f.processed[eventID]
	return ok, nil
}

func (f *fakeWebhookEventRepo) MarkProcessed(_ context.Context, eventID, eventType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[eventID] = eventType
	return nil
}
