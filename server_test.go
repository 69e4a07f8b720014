package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"rationdist/config"
	"rationdist/models"
	"rationdist/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	cl.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder { return cl.do(http.MethodGet, path, nil) }

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, form)
}

func setupTestServer(t *testing.T) (*server, *gorm.DB, *client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.DB.DSN = filepath.Join(t.TempDir(), "ration.db")
	cfg.DB.LogLevel = "silent"

	ctx := context.Background()
	db, err := initDB(ctx, cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	srv, err := newServer(ctx, cfg, db, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, db, &client{t: t, handler: srv.routes(), cookies: map[string]*http.Cookie{}}
}

func login(t *testing.T, cl *client) {
	t.Helper()
	resp := cl.post("/", url.Values{"username": {"admin"}, "password": {"admin123"}})
	if resp.Code != http.StatusFound || resp.Header().Get("Location") != "/dashboard_page" {
		t.Fatalf("login failed status=%d location=%s", resp.Code, resp.Header().Get("Location"))
	}
}

func expectRedirect(t *testing.T, resp *httptest.ResponseRecorder, prefix string) string {
	t.Helper()
	loc := resp.Header().Get("Location")
	if resp.Code != http.StatusFound || !strings.HasPrefix(loc, prefix) {
		t.Fatalf("expected redirect to %s got status=%d location=%q body=%s", prefix, resp.Code, loc, resp.Body.String())
	}
	return loc
}

func TestLoginFlow(t *testing.T) {
	_, _, cl := setupTestServer(t)

	// pages need a session
	expectRedirect(t, cl.get("/dashboard_page"), "/")
	if resp := cl.get("/"); !strings.Contains(resp.Body.String(), "Please log in first.") {
		t.Fatalf("expected login prompt, body=%s", resp.Body.String())
	}

	expectRedirect(t, cl.post("/", url.Values{"username": {"admin"}, "password": {"wrong"}}), "/?error=invalid")
	if resp := cl.get("/?error=invalid"); !strings.Contains(resp.Body.String(), "Invalid username or password.") {
		t.Fatalf("expected invalid credentials message")
	}

	login(t, cl)
	resp := cl.get("/dashboard_page")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Login successful!") {
		t.Fatalf("dashboard status=%d body=%s", resp.Code, resp.Body.String())
	}

	expectRedirect(t, cl.get("/logout"), "/")
	expectRedirect(t, cl.get("/view_ration"), "/")

	// a forged cookie is not a session
	cl.cookies["ration_session"] = &http.Cookie{Name: "ration_session", Value: "not-a-token"}
	expectRedirect(t, cl.get("/dashboard_page"), "/")
}

func TestDistributionToReceipt(t *testing.T) {
	_, db, cl := setupTestServer(t)
	login(t, cl)

	if resp := cl.get("/ration_distribution"); resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Demo3") {
		t.Fatalf("distribution form status=%d", resp.Code)
	}

	loc := expectRedirect(t, cl.post("/ration_distribution", url.Values{
		"beneficiaryId": {"3"},
		"itemType":      {"Rice"},
		"quantity":      {"10.5"},
		"dateDist":      {"2024-01-15"},
	}), "/receipt?id=")

	resp := cl.get(loc)
	body := resp.Body.String()
	if resp.Code != http.StatusOK {
		t.Fatalf("receipt status=%d", resp.Code)
	}
	for _, want := range []string{"Ration distributed successfully.", "Receipt No", "REC-", "Beneficiary ID", "Rice", "10.5", "2024-01-15"} {
		if !strings.Contains(body, want) {
			t.Fatalf("receipt page missing %q", want)
		}
	}

	id := strings.TrimPrefix(loc, "/receipt?id=")
	pdf := cl.get("/download_receipt?id=" + id)
	if pdf.Code != http.StatusOK {
		t.Fatalf("download status=%d", pdf.Code)
	}
	if ct := pdf.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := pdf.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt_3.pdf") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if !strings.HasPrefix(pdf.Body.String(), "%PDF-") {
		t.Fatalf("body is not a pdf")
	}

	if resp := cl.get("/view_distributions"); !strings.Contains(resp.Body.String(), id) {
		t.Fatalf("recent distributions should link the receipt")
	}

	var n int64
	db.Model(&models.DistributionRecord{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 record got %d", n)
	}

	report := cl.get("/reports/daily?date=2024-01-15")
	var summary struct {
		Records int `json:"records"`
	}
	if err := json.Unmarshal(report.Body.Bytes(), &summary); err != nil || summary.Records != 1 {
		t.Fatalf("unexpected report %s", report.Body.String())
	}
	if bad := cl.get("/reports/daily?date=15-01-2024"); bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date got %d", bad.Code)
	}
}

func TestDistributionRejectsBadInput(t *testing.T) {
	_, db, cl := setupTestServer(t)
	login(t, cl)

	resp := cl.post("/ration_distribution", url.Values{
		"beneficiaryId": {"3"},
		"itemType":      {"Rice"},
		"quantity":      {"abc"},
		"dateDist":      {"2024-01-15"},
	})
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "quantity must be a number") {
		t.Fatalf("expected 400 with message got %d", resp.Code)
	}
	var n int64
	db.Model(&models.DistributionRecord{}).Count(&n)
	if n != 0 {
		t.Fatalf("invalid submission stored %d rows", n)
	}

	today := time.Now().Format("2006-01-02")
	for _, q := range []string{"1e400", "0.0001", "12345678901234567.125"} {
		resp := cl.post("/ration_distribution", url.Values{
			"beneficiaryId": {"3"},
			"itemType":      {"Rice"},
			"quantity":      {q},
			"dateDist":      {today},
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("quantity %s: expected 400 got %d", q, resp.Code)
		}
	}
	db.Model(&models.DistributionRecord{}).Count(&n)
	if n != 0 {
		t.Fatalf("out of range quantities stored %d rows", n)
	}
	if resp := cl.get("/dashboard_page"); resp.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d", resp.Code)
	}

	if resp := cl.get("/receipt?id=00000000-0000-0000-0000-000000000000"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if resp := cl.get("/download_receipt?id=nope"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInventoryPages(t *testing.T) {
	_, db, cl := setupTestServer(t)
	login(t, cl)

	form := url.Values{
		"item_name":         {"Wheat"},
		"quantity":          {"500"},
		"unit":              {"kg"},
		"price_per_unit":    {"2.5"},
		"distribution_date": {"2024-01-01"},
	}
	expectRedirect(t, cl.post("/add_ration", form), "/view_ration")
	var item models.RationItem
	if err := db.Where("item_name = ?", "Wheat").First(&item).Error; err != nil {
		t.Fatalf("item not stored: %v", err)
	}
	resp := cl.get("/view_ration")
	if !strings.Contains(resp.Body.String(), "Ration item added successfully!") || !strings.Contains(resp.Body.String(), "2.50") {
		t.Fatalf("inventory page missing item")
	}

	editPath := "/edit_ration/" + itoa(item.ID)
	if resp := cl.get(editPath); resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `value="Wheat"`) {
		t.Fatalf("edit page status=%d", resp.Code)
	}
	form.Set("quantity", "-4")
	if resp := cl.post(editPath, form); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	form.Set("quantity", "450")
	expectRedirect(t, cl.post(editPath, form), "/view_ration")

	if resp := cl.get("/edit_ration/9999"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	expectRedirect(t, cl.get("/delete_ration/"+itoa(item.ID)), "/view_ration")
	var n int64
	db.Model(&models.RationItem{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected item deleted")
	}
}

func TestBeneficiaryAndRequests(t *testing.T) {
	_, db, cl := setupTestServer(t)
	login(t, cl)

	expectRedirect(t, cl.post("/update_status", url.Values{"beneficiary_id": {"2"}, "status": {"xyz123"}}), "/view_beneficiary_list")
	resp := cl.get("/view_beneficiary_list")
	if !strings.Contains(resp.Body.String(), "xyz123") || !strings.Contains(resp.Body.String(), "Status updated successfully.") {
		t.Fatalf("status not shown")
	}
	if resp := cl.post("/update_status", url.Values{"beneficiary_id": {"999"}, "status": {"Approved"}}); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	expectRedirect(t, cl.post("/ration_requests", url.Values{
		"beneficiary_id": {"1"}, "item_name": {"Sugar"}, "unit": {"kg"}, "month": {"January"},
	}), "/dashboard_page")
	var n int64
	db.Model(&models.RationRequest{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 request got %d", n)
	}
	if resp := cl.post("/ration_requests", url.Values{"beneficiary_id": {"1"}}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if resp := cl.get("/ration_requests"); !strings.Contains(resp.Body.String(), "Sugar") {
		t.Fatalf("request list missing entry")
	}
}

func TestHealthz(t *testing.T) {
	_, _, cl := setupTestServer(t)
	if resp := cl.get("/healthz"); resp.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", resp.Code)
	}
}

func TestLiveEvents(t *testing.T) {
	srv, _, cl := setupTestServer(t)
	login(t, cl)
	ts := httptest.NewServer(cl.handler)
	defer ts.Close()

	header := http.Header{}
	for _, ck := range cl.cookies {
		header.Add("Cookie", ck.Name+"="+ck.Value)
	}
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	expectRedirect(t, cl.post("/ration_distribution", url.Values{
		"beneficiaryId": {"5"}, "itemType": {"Kerosene"}, "quantity": {"2"}, "dateDist": {"2024-01-20"},
	}), "/receipt?id=")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev notify.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != notify.EventDistributionRecorded {
		t.Fatalf("unexpected event %+v", ev)
	}

	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatalf("websocket without a session must be refused")
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
