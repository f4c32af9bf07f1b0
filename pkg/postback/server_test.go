package postback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"signalbot/config"
	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/service"
	"signalbot/storage/memory"
)

type nopPresenter struct{}

func (nopPresenter) ShowSubscription(context.Context, *models.User, *models.Settings) error { return nil }
func (nopPresenter) ShowRegistration(context.Context, *models.User, *models.Settings) error { return nil }
func (nopPresenter) ShowDeposit(context.Context, *models.User, *models.Settings, decimal.Decimal, decimal.Decimal) error {
	return nil
}
func (nopPresenter) ShowConfigError(context.Context, *models.User) error { return nil }
func (nopPresenter) ShowAccessGranted(context.Context, *models.User, *models.Settings, bool) error {
	return nil
}
func (nopPresenter) ShowDestination(context.Context, *models.User, *models.Settings) error { return nil }
func (nopPresenter) ShowAccessLimited(context.Context, *models.User, *models.Settings, models.Tier) error {
	return nil
}
func (nopPresenter) ShowVIPGranted(context.Context, *models.User, *models.Settings) error { return nil }

type nopChecker struct{}

func (nopChecker) IsSubscribed(context.Context, string, int64) (bool, error) { return true, nil }

type nopNotifier struct{}

func (nopNotifier) ForwardEvent(context.Context, string, models.EventKind, string, int64, decimal.Decimal) error {
	return nil
}

const testSecret = "s3cret"

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	stg := memory.New()
	log := logger.New("test", "error")
	svc := service.New(stg, log, nopPresenter{}, nopChecker{}, nopNotifier{})
	cfg := &config.Config{AppPort: 8080, PostbackSecret: testSecret}
	srv := New(cfg, svc, log)
	require.NoError(t, srv.App.Build())
	return srv, stg
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.App.ServeHTTP(w, req)
	return w
}

func TestLiveness(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestBadSecretRejected(t *testing.T) {
	srv, stg := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet,
		"/postback/registration?secret=wrong&trader_id=tr-1&click_id=42", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	total, err := stg.User().Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestSecretAcceptedFromHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/postback/registration?trader_id=tr-1&click_id=42", nil)
	req.Header.Set("X-Postback-Secret", testSecret)
	w := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHeaderSecretOverridesBadQuerySecret(t *testing.T) {
	srv, _ := newTestServer(t)

	// Partner panels sometimes leave a stale secret templated into the
	// URL while the header carries the rotated one.
	req := httptest.NewRequest(http.MethodGet,
		"/postback/registration?secret=stale&trader_id=tr-1&click_id=42", nil)
	req.Header.Set("X-Postback-Secret", testSecret)
	w := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestMalformedClickIDSoftRejected(t *testing.T) {
	srv, stg := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet,
		"/postback/registration?secret="+testSecret+"&trader_id=tr-1&click_id=not-a-number", nil))

	// 200 so the partner's retry queue drops the event.
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ERR: click_id", w.Body.String())

	total, err := stg.User().Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRegistrationPostback(t *testing.T) {
	srv, stg := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet,
		"/postback/registration?secret="+testSecret+"&trader_id=tr-55&click_id=111222333", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	user, err := stg.User().Get(context.Background(), 111222333)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.True(t, user.Registered)
	require.Equal(t, "tr-55", *user.TraderID)
}

func TestDepositPostbackViaForm(t *testing.T) {
	srv, stg := newTestServer(t)

	form := url.Values{
		"trader_id": {"tr-55"},
		"click_id":  {"111222333"},
		"sumdep":    {"49.99"},
	}
	req := httptest.NewRequest(http.MethodPost, "/postback/first_deposit?secret="+testSecret,
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	user, err := stg.User().Get(context.Background(), 111222333)
	require.NoError(t, err)
	require.NotNil(t, user)
	total, err := stg.Deposit().TotalFor(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.NewFromFloat(49.99)))
}

func TestDepositPostbackViaJSONBody(t *testing.T) {
	srv, stg := newTestServer(t)

	// Telegram ids are too large for float64-roundtripping JSON decoders.
	body := `{"trader_id":"tr-55","click_id":7123456789012345678,"sumdep":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/postback/redeposit?secret="+testSecret,
		strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	user, err := stg.User().Get(context.Background(), 7123456789012345678)
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestDepositBadAmountSoftRejected(t *testing.T) {
	srv, stg := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet,
		"/postback/first_deposit?secret="+testSecret+"&trader_id=tr-1&click_id=42&sumdep=oops", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ERR: sumdep", w.Body.String())

	total, err := stg.Deposit().TotalAll(context.Background())
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestWithdrawPostback(t *testing.T) {
	srv, stg := newTestServer(t)

	w := do(srv, httptest.NewRequest(http.MethodGet,
		"/postback/withdraw?secret="+testSecret+"&trader_id=tr-1&click_id=42&wdr_sum=15", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	// Withdrawals never touch the ledger.
	total, err := stg.Deposit().TotalAll(context.Background())
	require.NoError(t, err)
	require.True(t, total.IsZero())
}
