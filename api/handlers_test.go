package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nemopss/carbon-tracker/backend/analytics"
	"github.com/nemopss/carbon-tracker/backend/db"
	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/export"
	"github.com/nemopss/carbon-tracker/backend/models"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

// failingStore breaks every read the analytics service performs.
type failingStore struct {
	*db.MemoryStorage
}

var errStoreDown = errors.New("store unavailable")

func (failingStore) FetchRange(context.Context, int, time.Time, time.Time) ([]models.Transaction, error) {
	return nil, errStoreDown
}

func (failingStore) SumFootprintRange(context.Context, int, time.Time, time.Time) (float64, error) {
	return 0, errStoreDown
}

func newTestRouter(s Store) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	clock := func() time.Time { return fixedNow }
	service := analytics.NewService(s, analytics.WithClock(clock))
	handler := NewHandler(s, service, testSecret, time.Hour, zerolog.Nop())
	handler.now = clock
	return NewRouter(handler, zerolog.Nop()), handler
}

func setupTestHandler(t *testing.T) (*gin.Engine, *db.MemoryStorage) {
	storage := db.NewMemoryStorage()
	r, _ := newTestRouter(storage)
	return r, storage
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func createUser(t *testing.T, s Store, email string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), models.CreateUser{
		Firstname: "Jane",
		Lastname:  "Doe",
		Email:     email,
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func getToken(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doRequest(r, "POST", "/login", "", models.Credentials{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response models.LoginResponse
	decode(t, w, &response)
	return response.Token
}

// seed stores an enriched transaction created at the given time.
func seed(t *testing.T, s Store, userID int, category models.Category, amount float64, merchant string, at time.Time) {
	t.Helper()
	tx := &models.Transaction{UserID: userID, Description: "seed", Amount: &amount, Category: &category}
	if merchant != "" {
		tx.Merchant = &merchant
	}
	emission.Apply(tx, at)
	if err := s.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
}

func march(day int) time.Time {
	return time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC)
}

func TestRegister(t *testing.T) {
	r, storage := setupTestHandler(t)

	w := doRequest(r, "POST", "/register", "", models.CreateUser{
		Firstname: "Jane",
		Lastname:  "Doe",
		Email:     "jane@example.com",
		Password:  "password123",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var response map[string]interface{}
	decode(t, w, &response)
	if response["email"] != "jane@example.com" || response["firstname"] != "Jane" {
		t.Errorf("Unexpected response %v", response)
	}
	if _, ok := response["password"]; ok {
		t.Error("Password must never be serialized")
	}

	fetched, err := storage.GetUserByEmail(context.Background(), "jane@example.com")
	if err != nil || fetched == nil {
		t.Fatalf("Expected stored user, got %v (err %v)", fetched, err)
	}

	// Short password
	w = doRequest(r, "POST", "/register", "", models.CreateUser{Email: "short@example.com", Password: "short"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// Duplicate email
	w = doRequest(r, "POST", "/register", "", models.CreateUser{Email: "JANE@example.com", Password: "password123"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d, got %d", http.StatusConflict, w.Code)
	}

	// Missing email
	w = doRequest(r, "POST", "/register", "", models.CreateUser{Password: "password123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestLogin(t *testing.T) {
	r, storage := setupTestHandler(t)
	createUser(t, storage, "jane@example.com")

	if token := getToken(t, r, "jane@example.com", "password123"); token == "" {
		t.Error("Expected token, got empty")
	}

	w := doRequest(r, "POST", "/login", "", models.Credentials{Email: "jane@example.com", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	w = doRequest(r, "POST", "/login", "", models.Credentials{Email: "nobody@example.com", Password: "password123"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r, storage := setupTestHandler(t)
	user := createUser(t, storage, "jane@example.com")

	if w := doRequest(r, "GET", "/api/transactions", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d without token, got %d", http.StatusUnauthorized, w.Code)
	}
	if w := doRequest(r, "GET", "/api/transactions", "not-a-jwt", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for garbage token, got %d", http.StatusUnauthorized, w.Code)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	})
	forgedToken, _ := forged.SignedString([]byte("other-secret"))
	if w := doRequest(r, "GET", "/api/transactions", forgedToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for foreign signature, got %d", http.StatusUnauthorized, w.Code)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-time.Minute)),
	})
	expiredToken, _ := expired.SignedString([]byte(testSecret))
	if w := doRequest(r, "GET", "/api/transactions", expiredToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for expired token, got %d", http.StatusUnauthorized, w.Code)
	}

	token := getToken(t, r, user.Email, "password123")
	if w := doRequest(r, "GET", "/api/transactions", token, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status %d with valid token, got %d", http.StatusOK, w.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	r, storage := setupTestHandler(t)
	createUser(t, storage, "jane@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	w := doRequest(r, "POST", "/api/transactions", token, map[string]any{
		"description": "Sunday roast",
		"amount":      100,
		"category":    "FOOD_MEAT",
		"merchant":    "  Local Butcher ",
		"paymentType": "CASH",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var created models.Transaction
	decode(t, w, &created)
	if created.ID == 0 {
		t.Error("Expected transaction ID to be set, got 0")
	}
	if created.CarbonFootprint == nil || *created.CarbonFootprint != 8 {
		t.Errorf("Expected footprint 8, got %v", created.CarbonFootprint)
	}
	if created.EmissionFactor == nil || *created.EmissionFactor != 0.08 {
		t.Errorf("Expected factor 0.08, got %v", created.EmissionFactor)
	}
	if created.FactorSource == nil || *created.FactorSource != emission.SourceCategoryDefault {
		t.Errorf("Expected factor source %s, got %v", emission.SourceCategoryDefault, created.FactorSource)
	}
	if created.ConfidenceScore == nil || *created.ConfidenceScore != 1 {
		t.Errorf("Expected confidence 1, got %v", created.ConfidenceScore)
	}
	if created.Currency != "EUR" {
		t.Errorf("Expected currency EUR, got %s", created.Currency)
	}
	if created.MerchantName() != "Local Butcher" {
		t.Errorf("Expected trimmed merchant, got %q", created.MerchantName())
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Errorf("Expected createdAt %v, got %v", fixedNow, created.CreatedAt)
	}

	// Untagged transactions are stored without a footprint.
	w = doRequest(r, "POST", "/api/transactions", token, map[string]any{"description": "misc", "amount": 12.5, "currency": "usd"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var untagged models.Transaction
	decode(t, w, &untagged)
	if untagged.CarbonFootprint != nil || untagged.EmissionFactor != nil || untagged.ConfidenceScore != nil {
		t.Errorf("Expected no footprint for untagged transaction, got %+v", untagged)
	}
	if untagged.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", untagged.Currency)
	}

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"negative amount", map[string]any{"amount": -5, "category": "ENERGY"}, "amount must be positive"},
		{"zero amount", map[string]any{"amount": 0}, "amount must be positive"},
		{"unknown category", map[string]any{"amount": 5, "category": "SPACESHIP"}, `unknown category "SPACESHIP"`},
		{"unknown payment type", map[string]any{"amount": 5, "paymentType": "BARTER"}, `unknown payment type "BARTER"`},
		{"confidence out of range", map[string]any{"amount": 5, "confidenceScore": 1.5}, "confidenceScore must be between 0 and 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, "POST", "/api/transactions", token, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			var response models.ErrorResponse
			decode(t, w, &response)
			if response.Error != tt.want {
				t.Errorf("Expected error %q, got %q", tt.want, response.Error)
			}
		})
	}
}

func TestGetTransactions(t *testing.T) {
	r, storage := setupTestHandler(t)
	user := createUser(t, storage, "jane@example.com")
	other := createUser(t, storage, "john@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	seed(t, storage, user.ID, models.FoodMeat, 100, "", march(1))
	seed(t, storage, user.ID, models.Energy, 40, "", march(3))
	seed(t, storage, user.ID, models.Shopping, 20, "", march(2))
	seed(t, storage, other.ID, models.Shopping, 999, "", march(2))

	w := doRequest(r, "GET", "/api/transactions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var transactions []models.Transaction
	decode(t, w, &transactions)
	if len(transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(transactions))
	}
	if *transactions[0].Category != models.Energy || *transactions[2].Category != models.FoodMeat {
		t.Errorf("Expected newest first, got %s ... %s", *transactions[0].Category, *transactions[2].Category)
	}
}

func TestGetCategories(t *testing.T) {
	r, storage := setupTestHandler(t)
	createUser(t, storage, "jane@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	w := doRequest(r, "GET", "/api/transactions/categories", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var categories []models.CategoryInfo
	decode(t, w, &categories)
	if len(categories) != len(models.Categories) {
		t.Fatalf("Expected %d categories, got %d", len(models.Categories), len(categories))
	}
	if categories[0].Name != string(models.TransportFlight) || categories[0].CarbonFactor != 0.25 {
		t.Errorf("Unexpected first category %+v", categories[0])
	}
}

func TestCarbonSummary(t *testing.T) {
	r, storage := setupTestHandler(t)
	user := createUser(t, storage, "jane@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	seed(t, storage, user.ID, models.FoodMeat, 100, "", march(10))
	seed(t, storage, user.ID, models.TransportCar, 50, "", time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC))

	w := doRequest(r, "GET", "/api/transactions/carbon-summary", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var summary models.CarbonSummary
	decode(t, w, &summary)
	want := models.CarbonSummary{CurrentMonth: 8, LastMonth: 6, Month: "2025-03"}
	if summary != want {
		t.Errorf("Expected %+v, got %+v", want, summary)
	}
}

func TestProfile(t *testing.T) {
	r, storage := setupTestHandler(t)
	createUser(t, storage, "jane@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	w := doRequest(r, "GET", "/api/user/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var profile models.ProfileResponse
	decode(t, w, &profile)
	if profile.Firstname != "Jane" || profile.Email != "jane@example.com" {
		t.Errorf("Unexpected profile %+v", profile)
	}

	w = doRequest(r, "PUT", "/api/user/profile", token, map[string]string{
		"firstname": "Janet",
		"lastname":  "Smith",
		"email":     "hijack@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	decode(t, w, &profile)
	if profile.Firstname != "Janet" || profile.Lastname != "Smith" || profile.Email != "jane@example.com" {
		t.Errorf("Expected names updated and email unchanged, got %+v", profile)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	r, storage := setupTestHandler(t)
	user := createUser(t, storage, "jane@example.com")
	token := getToken(t, r, "jane@example.com", "password123")

	seed(t, storage, user.ID, models.FoodMeat, 100, "Local Butcher", march(3))
	seed(t, storage, user.ID, models.FoodMeat, 50, "Local Butcher", march(12))
	seed(t, storage, user.ID, models.TransportCar, 20, "City Fuel", march(12))

	const window = "from=2025-03-01&to=2025-03-31"

	t.Run("summary", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/summary?"+window, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var summary models.AnalyticsSummary
		decode(t, w, &summary)
		if summary.TotalCO2 != 14.4 || summary.AverageCO2PerTransaction != 4.8 || summary.TransactionCount != 3 {
			t.Errorf("Unexpected summary %+v", summary)
		}
		if summary.TopCategory == nil || summary.TopCategory.Name != "FOOD_MEAT" || summary.TopCategory.Percentage != 83.3 {
			t.Errorf("Unexpected top category %+v", summary.TopCategory)
		}
		if summary.PeriodStart != "2025-03-01" || summary.PeriodEnd != "2025-03-31" {
			t.Errorf("Unexpected period %s..%s", summary.PeriodStart, summary.PeriodEnd)
		}
	})

	t.Run("malformed dates", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/summary?from=notadate&to=31/03/2025", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("timeseries", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/timeseries?"+window+"&groupBy=day", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var points []models.TimeSeriesPoint
		decode(t, w, &points)
		if len(points) != 2 || points[0].Date != "2025-03-03" || points[1].TransactionCount != 2 {
			t.Errorf("Unexpected series %+v", points)
		}
	})

	t.Run("by-category", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/by-category?"+window, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var breakdown []models.CategoryBreakdown
		decode(t, w, &breakdown)
		if len(breakdown) != 2 || breakdown[0].Category != "FOOD_MEAT" || breakdown[1].Percentage != 16.7 {
			t.Errorf("Unexpected breakdown %+v", breakdown)
		}
	})

	t.Run("top-merchants", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/top-merchants?"+window+"&limit=1", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var merchants []models.MerchantAnalytics
		decode(t, w, &merchants)
		if len(merchants) != 1 || merchants[0].MerchantName != "Local Butcher" || merchants[0].PrimaryCategory != emission.DisplayNameOf(models.FoodMeat) {
			t.Errorf("Unexpected merchants %+v", merchants)
		}

		w = doRequest(r, "GET", "/api/analytics/top-merchants?limit=ten", token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("transactions", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/transactions?"+window+"&category=FOOD_MEAT&merchant=butcher&minAmount=60", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var transactions []models.Transaction
		decode(t, w, &transactions)
		if len(transactions) != 1 || *transactions[0].Amount != 100 {
			t.Errorf("Unexpected listing %+v", transactions)
		}

		for _, query := range []string{"minAmount=abc", "maxAmount=1e", "minAmount=NaN", "maxAmount=Inf", "minAmount=-Inf", "category=SPACESHIP"} {
			w := doRequest(r, "GET", "/api/analytics/transactions?"+query, token, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d for %s, got %d", http.StatusBadRequest, query, w.Code)
			}
		}
	})

	t.Run("empty merchant filter", func(t *testing.T) {
		seed(t, storage, user.ID, models.Energy, 10, "", march(20))

		w := doRequest(r, "GET", "/api/analytics/transactions?"+window, token, nil)
		var all []models.Transaction
		decode(t, w, &all)

		w = doRequest(r, "GET", "/api/analytics/transactions?"+window+"&merchant=", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var withMerchant []models.Transaction
		decode(t, w, &withMerchant)
		if len(all) != 4 || len(withMerchant) != 3 {
			t.Errorf("Expected 4 transactions and 3 with a merchant, got %d and %d", len(all), len(withMerchant))
		}
	})

	t.Run("export", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/transactions/export?"+window, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
			t.Errorf("Expected content type %s, got %s", export.ContentType, ct)
		}
		if !strings.Contains(w.Header().Get("Content-Disposition"), "transactions-20250331.xlsx") {
			t.Errorf("Unexpected content disposition %s", w.Header().Get("Content-Disposition"))
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
			t.Error("Expected a zip-based workbook")
		}
	})

	t.Run("insights", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/analytics/insights?"+window, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		var insights []models.Insight
		decode(t, w, &insights)
		// Meat dominates and the butcher exceeds a quarter of the total.
		if len(insights) != 2 {
			t.Fatalf("Expected 2 insights, got %+v", insights)
		}
		if insights[0].Severity != models.SeverityWarning || insights[1].Title != "Top Emitter" {
			t.Errorf("Unexpected insights %+v", insights)
		}
	})
}

func TestAnalyticsStoreFailure(t *testing.T) {
	storage := db.NewMemoryStorage()
	createUser(t, storage, "jane@example.com")
	r, _ := newTestRouter(failingStore{storage})
	token := getToken(t, r, "jane@example.com", "password123")

	for _, path := range []string{
		"/api/analytics/summary",
		"/api/analytics/insights",
		"/api/analytics/transactions",
		"/api/transactions/carbon-summary",
	} {
		w := doRequest(r, "GET", path, token, nil)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusInternalServerError, w.Code)
			continue
		}
		var response models.ErrorResponse
		decode(t, w, &response)
		if !strings.Contains(response.Error, errStoreDown.Error()) {
			t.Errorf("%s: expected store error, got %q", path, response.Error)
		}
	}
}

func TestRequestID(t *testing.T) {
	r, _ := setupTestHandler(t)

	w := doRequest(r, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}

	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("Expected request id to be echoed, got %s", got)
	}
}
