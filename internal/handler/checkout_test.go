package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/payment"
	"github.com/audioshop/audioshop-api/internal/queue"
)

type fakeProvider struct {
	items []payment.LineItem
	email string
}

func (f *fakeProvider) CreateSession(ctx context.Context, items []payment.LineItem, email string) (string, string, error) {
	f.items = items
	f.email = email
	return "https://checkout.example/session", "cs_test_123", nil
}

func (f *fakeProvider) RetrieveSession(ctx context.Context, sessionID string) (payment.SessionResult, error) {
	return payment.SessionResult{Customer: map[string]string{"email": "casey@example.com"}, Invoice: "inv_1"}, nil
}

type fakePublisher struct {
	events []queue.CheckoutStartedEvent
}

func (f *fakePublisher) PublishCheckoutStarted(ctx context.Context, ev queue.CheckoutStartedEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func TestCreateSessionReturnsURLAndPublishes(t *testing.T) {
	provider := &fakeProvider{}
	publisher := &fakePublisher{}
	h := NewCheckoutHandler(provider, publisher)

	db := newMemDB()
	user := seedUser(t, db, "casey", "casey@example.com", "Str0ng!pass")

	e := newTestEcho()
	c, rec := jsonContext(e, http.MethodPatch, "/",
		`{"products":[{"name":"ZX9","description":"Speaker","image":"img","price":45,"amount":2}]}`)
	middleware.SetIdentity(c, user)

	require.NoError(t, h.CreateSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://checkout.example/session")

	assert.Equal(t, "casey@example.com", provider.email)
	require.Len(t, publisher.events, 1)
	ev := publisher.events[0]
	assert.Equal(t, "cs_test_123", ev.SessionID)
	assert.Equal(t, user.ID.Hex(), ev.UserID)
	assert.Equal(t, 1, ev.ItemCount)
	assert.Equal(t, int64(9000), ev.TotalCents)
}

func TestCreateSessionRoundsFractionalCents(t *testing.T) {
	provider := &fakeProvider{}
	publisher := &fakePublisher{}
	h := NewCheckoutHandler(provider, publisher)

	db := newMemDB()
	user := seedUser(t, db, "casey", "casey@example.com", "Str0ng!pass")

	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPatch, "/",
		`{"products":[{"name":"ZX9","price":19.999,"amount":1}]}`)
	middleware.SetIdentity(c, user)

	require.NoError(t, h.CreateSession(c))
	require.Len(t, publisher.events, 1)
	assert.Equal(t, int64(2000), publisher.events[0].TotalCents,
		"19.999 rounds to 2000 cents, not truncated to 1999")
}

func TestCreateSessionEmptyCart(t *testing.T) {
	h := NewCheckoutHandler(&fakeProvider{}, nil)
	db := newMemDB()
	user := seedUser(t, db, "casey", "casey@example.com", "Str0ng!pass")

	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPatch, "/", `{"products":[]}`)
	middleware.SetIdentity(c, user)

	err := h.CreateSession(c)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestSuccessRequiresSessionID(t *testing.T) {
	h := NewCheckoutHandler(&fakeProvider{}, nil)

	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := h.Success(c)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestSuccessReturnsCustomerAndInvoice(t *testing.T) {
	h := NewCheckoutHandler(&fakeProvider{}, nil)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/?session_id=cs_test_123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Success(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customer"`)
	assert.Contains(t, rec.Body.String(), `"invoice"`)
}
