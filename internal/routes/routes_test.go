package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andino-pay/andino_pay/internal/api"
	"github.com/andino-pay/andino_pay/internal/config"
	"github.com/andino-pay/andino_pay/internal/logging"
)

func newDevApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppName:         "andino_pay_test",
			AppEnv:          "development",
			SessionTTL:      5 * time.Minute,
			UpstreamTimeout: time.Second,
			ConfirmPerMin:   5,
		},
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, api.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, env
}

func TestSetupRequiresBackendsOutsideDev(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{
		Cfg:    config.Config{AppEnv: "production"},
		Logger: logging.Discard(),
	})
	if err == nil {
		t.Fatalf("expected setup to fail without database in production")
	}
}

func TestEndToEndPaymentFlow(t *testing.T) {
	app := newDevApp(t)

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/client/register",
		`{"document":"12345678","names":"Maria Lopez","email":"maria@example.com","phone":"3001234567"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status=%d code=%s message=%s", resp.StatusCode, env.Code, env.Message)
	}

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/load",
		`{"document":"12345678","phone":"3001234567","amount":"100.00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load: status=%d code=%s message=%s", resp.StatusCode, env.Code, env.Message)
	}

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/payment/init",
		`{"document":"12345678","phone":"3001234567","amount":"40.00"}`)
	if resp.StatusCode != http.StatusOK || env.Code != api.CodePending {
		t.Fatalf("init: status=%d code=%s message=%s", resp.StatusCode, env.Code, env.Message)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("init data missing: %+v", env)
	}
	sessionID, _ := data["sessionId"].(string)
	token, _ := data["token"].(string)

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/payment/confirm",
		fmt.Sprintf(`{"sessionId":%q,"token":%q}`, sessionID, token))
	if resp.StatusCode != http.StatusOK || env.Code != api.CodeOK {
		t.Fatalf("confirm: status=%d code=%s message=%s", resp.StatusCode, env.Code, env.Message)
	}

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/balance",
		`{"document":"12345678","phone":"3001234567"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance: status=%d code=%s", resp.StatusCode, env.Code)
	}
	balData, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("balance data missing: %+v", env)
	}
	if got, _ := balData["balance"].(string); got != "60" && got != "60.00" {
		t.Fatalf("balance after payment = %v", balData["balance"])
	}
}

func TestHealthAndPing(t *testing.T) {
	app := newDevApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/healthz", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping status = %d", resp.StatusCode)
	}
}
