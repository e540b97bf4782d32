// Файл: internal/routes/main_router_test.go
package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/repositories"
	"restaurant-orders/internal/repositories/memstore"
	"restaurant-orders/pkg/config"
	"restaurant-orders/pkg/eventbus"
	"restaurant-orders/pkg/service"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

// OrderTestSuite drives the whole HTTP stack against the in-memory store and
// an in-process Redis.
type OrderTestSuite struct {
	suite.Suite
	Echo   *echo.Echo
	Store  *memstore.Store
	Redis  *miniredis.Miniredis
	Bus    *eventbus.Bus
	tokens map[string]string
}

func TestOrderTestSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) SetupTest() {
	nopLogger := zap.NewNop()
	suite.Store = memstore.New()
	suite.Redis = miniredis.RunT(suite.T())
	redisClient := redis.NewClient(&redis.Options{Addr: suite.Redis.Addr()})
	suite.T().Cleanup(func() { _ = redisClient.Close() })
	suite.Bus = eventbus.New(nopLogger)

	cfg := &config.Config{
		Mongo:       config.MongoConfig{Collection: repositories.OrdersCollection, OpTimeout: time.Second},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
	jwtSvc := service.NewJWTService("test-secret", time.Hour, nopLogger)

	suite.tokens = map[string]string{}
	for _, role := range []string{"waiter", "chef", "customer"} {
		token, err := jwtSvc.GenerateToken(role+"-1", role)
		suite.Require().NoError(err)
		suite.tokens[role] = token
	}

	suite.Echo = echo.New()
	InitRouter(suite.Echo, Dependencies{
		Connector: suite.Store,
		Cache:     repositories.NewRedisCacheRepository(redisClient),
		Publisher: suite.Bus,
		Registry:  prometheus.NewRegistry(),
		JWT:       jwtSvc,
	}, &Loggers{Main: nopLogger, Auth: nopLogger, Order: nopLogger}, cfg)
}

func (suite *OrderTestSuite) TearDownTest() {
	suite.Bus.Wait()
}

func (suite *OrderTestSuite) do(method, path, role, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+suite.tokens[role])
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

const validOrder = `{
	"items": [{"name": "Pizza", "quantity": 2, "price": 10.99}, {"name": "Burger", "quantity": 1, "price": 5.99}],
	"total": 27.97,
	"customerName": "Pepito Pérez",
	"customerTable": "5"
}`

func (suite *OrderTestSuite) createOrder() entities.Order {
	rec, env := suite.do(http.MethodPost, "/api/orders", "waiter", validOrder)
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var order entities.Order
	suite.Require().NoError(json.Unmarshal(env.Body, &order))
	return order
}

func (suite *OrderTestSuite) TestCreateOrderAsWaiter() {
	order := suite.createOrder()

	suite.False(order.ID.IsZero())
	suite.Equal("Pepito Pérez", order.CustomerName)
	suite.Equal("5", order.CustomerTable)
	suite.Equal(entities.OrderStatusPending, order.Status)
	suite.Equal("waiter-1", order.CreatedBy)
	suite.Equal(1, suite.Store.Len(repositories.OrdersCollection))
}

func (suite *OrderTestSuite) TestCreateOrderForbiddenForOtherRoles() {
	for _, role := range []string{"chef", "customer"} {
		rec, env := suite.do(http.MethodPost, "/api/orders", role, validOrder)

		suite.Equal(http.StatusForbidden, rec.Code)
		suite.False(env.Status)
		suite.Equal("only waiters may create orders", env.Message)
	}
	suite.Zero(suite.Store.Len(repositories.OrdersCollection))
}

func (suite *OrderTestSuite) TestCreateOrderValidation() {
	rec, env := suite.do(http.MethodPost, "/api/orders", "waiter", `{"items":[{"name":"Pizza","quantity":1,"price":1}],"total":1}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(env.Message, "customerName")

	rec, _ = suite.do(http.MethodPost, "/api/orders", "waiter", `{"items":`)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *OrderTestSuite) TestCreateOrderIdempotent() {
	first, env := suite.do(http.MethodPost, "/api/orders", "waiter", validOrder, "Idempotency-Key", "abc")
	suite.Require().Equal(http.StatusCreated, first.Code)
	var created entities.Order
	suite.Require().NoError(json.Unmarshal(env.Body, &created))

	second, env := suite.do(http.MethodPost, "/api/orders", "waiter", validOrder, "Idempotency-Key", "abc")
	suite.Require().Equal(http.StatusOK, second.Code)
	var replayed entities.Order
	suite.Require().NoError(json.Unmarshal(env.Body, &replayed))

	suite.Equal(created.ID, replayed.ID)
	suite.Equal(1, suite.Store.Len(repositories.OrdersCollection))
}

func (suite *OrderTestSuite) TestRequiresToken() {
	rec, env := suite.do(http.MethodGet, "/api/orders", "", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.False(env.Status)
}

func (suite *OrderTestSuite) TestGetOrders() {
	first := suite.createOrder()
	second := suite.createOrder()

	rec, env := suite.do(http.MethodGet, "/api/orders", "chef", "")

	suite.Require().Equal(http.StatusOK, rec.Code)
	var body struct {
		List  []entities.Order `json:"list"`
		Total int              `json:"total"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &body))
	suite.Require().Len(body.List, 2)
	suite.Equal(2, body.Total)
	suite.Equal(first.ID, body.List[0].ID)
	suite.Equal(second.ID, body.List[1].ID)
}

func (suite *OrderTestSuite) TestFindOrder() {
	order := suite.createOrder()

	rec, env := suite.do(http.MethodGet, "/api/orders/"+order.ID.Hex(), "customer", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var found entities.Order
	suite.Require().NoError(json.Unmarshal(env.Body, &found))
	suite.Equal(order.ID, found.ID)

	rec, env = suite.do(http.MethodGet, "/api/orders/"+primitive.NewObjectID().Hex(), "customer", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal("order not found", env.Message)

	rec, _ = suite.do(http.MethodGet, "/api/orders/nope", "customer", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *OrderTestSuite) TestUpdateOrder() {
	order := suite.createOrder()

	rec, env := suite.do(http.MethodPut, "/api/orders/"+order.ID.Hex(), "chef", `{"status":"preparing"}`)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.JSONEq(`{"matchedCount":1,"modifiedCount":1}`, string(env.Body))

	_, env = suite.do(http.MethodGet, "/api/orders/"+order.ID.Hex(), "chef", "")
	var found entities.Order
	suite.Require().NoError(json.Unmarshal(env.Body, &found))
	suite.Equal(entities.OrderStatusPreparing, found.Status)
	suite.Equal(order.CustomerName, found.CustomerName)

	rec, _ = suite.do(http.MethodPut, "/api/orders/"+primitive.NewObjectID().Hex(), "chef", `{"total":3}`)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec, _ = suite.do(http.MethodPut, "/api/orders/"+order.ID.Hex(), "chef", `{"status":"lost"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *OrderTestSuite) TestDeleteOrder() {
	order := suite.createOrder()

	rec, env := suite.do(http.MethodDelete, "/api/orders/"+order.ID.Hex(), "chef", "")

	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"deletedCount":1}`, string(env.Body))
	suite.Zero(suite.Store.Len(repositories.OrdersCollection))
}

func (suite *OrderTestSuite) TestDatabaseFailureIs500() {
	suite.Store.FailNext(memstore.OpFind, errors.New("connection reset by peer"))

	rec, env := suite.do(http.MethodGet, "/api/orders", "chef", "")

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.Equal("connection reset by peer", env.Message)
	suite.Equal(memstore.Stats{Connects: 1, Closes: 1}, suite.Store.Stats())
}

func (suite *OrderTestSuite) TestExportOrders() {
	order := suite.createOrder()

	rec, _ := suite.do(http.MethodGet, "/api/orders/export", "chef", "")

	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Header().Get(echo.HeaderContentDisposition), "orders_")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	suite.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("Заказы")
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal(order.ID.Hex(), rows[1][1])
	suite.Equal("Pizza x 2, Burger x 1", rows[1][4])
}

func (suite *OrderTestSuite) TestHealthAndMetrics() {
	rec, env := suite.do(http.MethodGet, "/health", "", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.True(env.Status)
	var health map[string]string
	suite.Require().NoError(json.Unmarshal(env.Body, &health))
	suite.Equal("ok", health["status"])

	suite.createOrder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(mrec, req)
	suite.Equal(http.StatusOK, mrec.Code)
	suite.Contains(mrec.Body.String(), `orders_operations_total{operation="create",outcome="ok"} 1`)
}
