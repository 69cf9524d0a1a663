package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adrianstroescu/saasrevive/internal/api/handlers"
	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
)

type dealHandlerFixture struct {
	listingSvc *MockListingService
	inquirySvc *MockInquiryService
	offerSvc   *MockOfferService
	userSvc    *MockUserService
	handler    *handlers.DealHandler
}

func newDealFixture() *dealHandlerFixture {
	f := &dealHandlerFixture{
		listingSvc: new(MockListingService),
		inquirySvc: new(MockInquiryService),
		offerSvc:   new(MockOfferService),
		userSvc:    new(MockUserService),
	}
	f.handler = handlers.NewDealHandler(&config.Config{}, f.listingSvc, f.inquirySvc, f.offerSvc, f.userSvc, nil)
	return f
}

func (f *dealHandlerFixture) router(userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asUser(userID, role))
	r.POST("/listings/:id/inquiries", f.handler.CreateInquiry)
	r.POST("/listings/:id/offers", f.handler.CreateOffer)
	r.PATCH("/offers/:id", f.handler.DecideOffer)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

func TestDealHandler_CreateInquiry_Success(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	listing := &models.Listing{ID: "listing-1", SellerID: "seller-1", Title: "CRM"}
	f.listingSvc.On("FindActiveByID", mock.Anything, "listing-1").Return(listing, nil)
	f.inquirySvc.On("CreateInquiry", mock.Anything, "listing-1", "buyer-1", "Still available?").
		Return(&models.Inquiry{ID: "inq-1", ListingID: "listing-1", BuyerID: "buyer-1"}, nil)
	f.userSvc.On("FindByID", mock.Anything, "seller-1").
		Return(&models.User{ID: "seller-1", Email: "s@example.com"}, nil).Maybe()

	w := doJSON(r, "POST", "/listings/listing-1/inquiries", `{"message":"Still available?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "inq-1", resp["inquiryId"])
	f.inquirySvc.AssertExpectations(t)
}

func TestDealHandler_CreateInquiry_OwnListing(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	listing := &models.Listing{ID: "listing-1", SellerID: "seller-1"}
	f.listingSvc.On("FindActiveByID", mock.Anything, "listing-1").Return(listing, nil)

	w := doJSON(r, "POST", "/listings/listing-1/inquiries", `{"message":"hello me"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You can't inquire on your own listing", errorField(t, w))
	f.inquirySvc.AssertNotCalled(t, "CreateInquiry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDealHandler_CreateInquiry_ListingNotFound(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	f.listingSvc.On("FindActiveByID", mock.Anything, "missing").Return(nil, mongo.ErrNoDocuments)

	w := doJSON(r, "POST", "/listings/missing/inquiries", `{"message":"anyone there?"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Listing not found", errorField(t, w))
}

func TestDealHandler_CreateInquiry_InvalidPayload(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	w := doJSON(r, "POST", "/listings/listing-1/inquiries", `{"message":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", errorField(t, w))
	f.listingSvc.AssertNotCalled(t, "FindActiveByID", mock.Anything, mock.Anything)
}

func TestDealHandler_CreateInquiry_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newDealFixture()
	r := gin.New()
	r.Use(middleware.AuthMiddleware("test-secret"))
	r.POST("/listings/:id/inquiries", f.handler.CreateInquiry)

	w := doJSON(r, "POST", "/listings/listing-1/inquiries", `{"message":"hi"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorField(t, w))
}

func TestDealHandler_CreateOffer_Success(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	listing := &models.Listing{ID: "listing-1", SellerID: "seller-1", Title: "CRM"}
	f.listingSvc.On("FindActiveByID", mock.Anything, "listing-1").Return(listing, nil)
	f.offerSvc.On("CreateOffer", mock.Anything, "listing-1", "buyer-1", int64(10000), "").
		Return(&models.Offer{ID: "offer-1", Amount: 10000, Status: models.OfferStatusPending}, nil)
	f.userSvc.On("FindByID", mock.Anything, "seller-1").
		Return(&models.User{ID: "seller-1", Email: "s@example.com"}, nil).Maybe()

	w := doJSON(r, "POST", "/listings/listing-1/offers", `{"amount":10000}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "offer-1", resp["offerId"])
}

func TestDealHandler_CreateOffer_OwnListing(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	listing := &models.Listing{ID: "listing-1", SellerID: "seller-1"}
	f.listingSvc.On("FindActiveByID", mock.Anything, "listing-1").Return(listing, nil)

	w := doJSON(r, "POST", "/listings/listing-1/offers", `{"amount":500}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You can't make an offer on your own listing", errorField(t, w))
	f.offerSvc.AssertNotCalled(t, "CreateOffer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDealHandler_CreateOffer_InvalidAmount(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":-5}`, `{"amount":1000000001}`} {
		w := doJSON(r, "POST", "/listings/listing-1/offers", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.Equal(t, "Invalid input", errorField(t, w))
	}
}

func TestDealHandler_DecideOffer_AcceptThenDecline(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	f.offerSvc.On("DecideOffer", mock.Anything, "offer-1", "seller-1", models.OfferActionAccept).
		Return(models.OfferStatusAccepted, nil).Once()
	f.offerSvc.On("FindByID", mock.Anything, "offer-1").
		Return(&models.Offer{ID: "offer-1", BuyerID: "buyer-1", Amount: 10000, Status: models.OfferStatusAccepted}, nil).Maybe()
	f.userSvc.On("FindByID", mock.Anything, "buyer-1").
		Return(&models.User{ID: "buyer-1", Email: "b@example.com"}, nil).Maybe()

	w := doJSON(r, "PATCH", "/offers/offer-1", `{"action":"ACCEPT"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, string(models.OfferStatusAccepted), resp["status"])

	// The offer is terminal now; a second decision fails.
	f.offerSvc.On("DecideOffer", mock.Anything, "offer-1", "seller-1", models.OfferActionDecline).
		Return(models.OfferStatus(""), services.ErrOfferNotPending).Once()

	w = doJSON(r, "PATCH", "/offers/offer-1", `{"action":"DECLINE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only pending offers can be updated", errorField(t, w))
}

func TestDealHandler_DecideOffer_RequiresSellerRole(t *testing.T) {
	f := newDealFixture()
	r := f.router("buyer-1", models.RoleBuyer)

	w := doJSON(r, "PATCH", "/offers/offer-1", `{"action":"ACCEPT"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only sellers can manage offers", errorField(t, w))
	f.offerSvc.AssertNotCalled(t, "DecideOffer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDealHandler_DecideOffer_NotOwner(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-2", models.RoleSeller)

	f.offerSvc.On("DecideOffer", mock.Anything, "offer-1", "seller-2", models.OfferActionAccept).
		Return(models.OfferStatus(""), services.ErrNotListingOwner)

	w := doJSON(r, "PATCH", "/offers/offer-1", `{"action":"ACCEPT"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", errorField(t, w))
}

func TestDealHandler_DecideOffer_NotFound(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	f.offerSvc.On("DecideOffer", mock.Anything, "missing", "seller-1", models.OfferActionAccept).
		Return(models.OfferStatus(""), mongo.ErrNoDocuments)

	w := doJSON(r, "PATCH", "/offers/missing", `{"action":"ACCEPT"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Offer not found", errorField(t, w))
}

func TestDealHandler_DecideOffer_MalformedBodyUnknownOffer(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	// A bad body must not mask the missing offer: existence is checked first.
	f.offerSvc.On("DecideOffer", mock.Anything, "missing", "seller-1", models.OfferAction("")).
		Return(models.OfferStatus(""), mongo.ErrNoDocuments)

	w := doJSON(r, "PATCH", "/offers/missing", `{not json`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Offer not found", errorField(t, w))
}

func TestDealHandler_DecideOffer_MalformedBodyPendingOffer(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	f.offerSvc.On("DecideOffer", mock.Anything, "offer-1", "seller-1", models.OfferAction("")).
		Return(models.OfferStatus(""), services.ErrInvalidOfferAction)

	w := doJSON(r, "PATCH", "/offers/offer-1", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", errorField(t, w))
}

func TestDealHandler_DecideOffer_UnknownAction(t *testing.T) {
	f := newDealFixture()
	r := f.router("seller-1", models.RoleSeller)

	f.offerSvc.On("DecideOffer", mock.Anything, "offer-1", "seller-1", models.OfferAction("ARCHIVE")).
		Return(models.OfferStatus(""), services.ErrInvalidOfferAction)

	w := doJSON(r, "PATCH", "/offers/offer-1", `{"action":"ARCHIVE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", errorField(t, w))
}
