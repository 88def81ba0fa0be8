package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/andino-pay/andino_pay/internal/api"
	"github.com/andino-pay/andino_pay/internal/clients"
	"github.com/andino-pay/andino_pay/internal/ledger"
	"github.com/andino-pay/andino_pay/internal/session"
)

func newTestApp(t *testing.T, balance string) (*fiber.App, clients.UserWallet) {
	t.Helper()
	led := ledger.NewInMemory()
	repo := clients.NewMemoryRepository(led)
	store := session.NewMemoryStore(session.DefaultTTL)

	uw, err := repo.RegisterUserAndWallet(context.Background(), clients.RegisterInput{
		Document: "12345678",
		Names:    "Maria Lopez",
		Email:    "maria@example.com",
		Phone:    "3001234567",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ledger.SeedWallet(led, uw.WalletID, decimal.RequireFromString(balance))

	h := NewHandler(NewService(repo, led, store, nil, time.Second))
	app := fiber.New()
	app.Post("/payment/init", h.Init)
	app.Post("/payment/confirm", h.Confirm)
	return app, uw
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, api.Envelope) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, env
}

func TestPaymentEndpoints(t *testing.T) {
	app, uw := newTestApp(t, "100.00")

	initBody := fmt.Sprintf(`{"document":%q,"phone":%q,"amount":"40.00"}`, uw.Document, uw.Phone)
	resp, env := postJSON(t, app, "/payment/init", initBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("init status = %d", resp.StatusCode)
	}
	if env.Code != api.CodePending {
		t.Fatalf("init code = %s", env.Code)
	}

	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("init data missing: %+v", env)
	}
	sessionID, _ := data["sessionId"].(string)
	token, _ := data["token"].(string)
	if sessionID == "" || token == "" {
		t.Fatalf("init data incomplete: %+v", data)
	}

	wrong := "000000"
	if wrong == token {
		wrong = "000001"
	}
	resp, env = postJSON(t, app, "/payment/confirm",
		fmt.Sprintf(`{"sessionId":%q,"token":%q}`, sessionID, wrong))
	if resp.StatusCode != http.StatusUnauthorized || env.Code != api.CodeBadToken {
		t.Fatalf("wrong token: status=%d code=%s", resp.StatusCode, env.Code)
	}

	resp, env = postJSON(t, app, "/payment/confirm",
		fmt.Sprintf(`{"sessionId":%q,"token":%q}`, sessionID, token))
	if resp.StatusCode != http.StatusOK || env.Code != api.CodeOK {
		t.Fatalf("confirm: status=%d code=%s message=%s", resp.StatusCode, env.Code, env.Message)
	}

	// the session is gone after a successful confirm
	resp, env = postJSON(t, app, "/payment/confirm",
		fmt.Sprintf(`{"sessionId":%q,"token":%q}`, sessionID, token))
	if resp.StatusCode != http.StatusNotFound || env.Code != api.CodeNotFound {
		t.Fatalf("replay: status=%d code=%s", resp.StatusCode, env.Code)
	}
}

func TestInitInsufficientFundsResponse(t *testing.T) {
	app, uw := newTestApp(t, "10.00")

	body := fmt.Sprintf(`{"document":%q,"phone":%q,"amount":"50.00"}`, uw.Document, uw.Phone)
	resp, env := postJSON(t, app, "/payment/init", body)
	if resp.StatusCode != http.StatusForbidden || env.Code != api.CodeForbidden {
		t.Fatalf("status=%d code=%s", resp.StatusCode, env.Code)
	}
	if !strings.Contains(env.Message, "$10.00") {
		t.Fatalf("expected current balance in message, got %q", env.Message)
	}
}

func TestInitUnknownClientResponse(t *testing.T) {
	app, _ := newTestApp(t, "10.00")

	resp, env := postJSON(t, app, "/payment/init",
		`{"document":"00000000","phone":"3000000000","amount":"5.00"}`)
	if resp.StatusCode != http.StatusNotFound || env.Code != api.CodeNotFound {
		t.Fatalf("status=%d code=%s", resp.StatusCode, env.Code)
	}
}

func TestConfirmValidation(t *testing.T) {
	app, _ := newTestApp(t, "10.00")

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"sessionId":`},
		{"missing token", `{"sessionId":"abc"}`},
	}
	for _, tc := range cases {
		resp, env := postJSON(t, app, "/payment/confirm", tc.body)
		if resp.StatusCode != http.StatusBadRequest || env.Code != api.CodeBadRequest {
			t.Fatalf("%s: status=%d code=%s", tc.name, resp.StatusCode, env.Code)
		}
	}
}
