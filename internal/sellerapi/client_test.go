package sellerapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSellerProfile(t *testing.T) {
	form := model.NewFormState()
	form.FirstName = "Ada"
	form.LastName = "Okafor"
	form.StoreName = "Ada Electronics"
	form.ResidentialAddress.City = "Lagos"

	files := map[model.DocumentSlot]*model.UploadedFile{
		model.SlotGovernmentID: {
			Slot:        model.SlotGovernmentID,
			Filename:    "passport.pdf",
			ContentType: "application/pdf",
			Content:     []byte("pdf-bytes"),
		},
		model.SlotSelfieWithID: {
			Slot:        model.SlotSelfieWithID,
			Filename:    "selfie.jpg",
			ContentType: "image/jpeg",
			Content:     []byte("jpg-bytes"),
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-seller-profile", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "Ada", r.FormValue("firstName"))
		assert.Equal(t, "Ada Electronics", r.FormValue("storeName"))

		// Nested records arrive as JSON fields.
		var addr model.Address
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("residentialAddress")), &addr))
		assert.Equal(t, "Lagos", addr.City)

		f, header, err := r.FormFile(string(model.SlotGovernmentID))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "passport.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		// Empty slots are simply absent.
		_, _, err = r.FormFile(string(model.SlotProofOfResidence))
		assert.Error(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sellerId":"S-100","taxStatus":"non-taxable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.CreateSellerProfile(context.Background(), form, files)
	require.NoError(t, err)
	assert.Equal(t, "S-100", resp.SellerID)
}

func TestCreateSellerProfileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"phone number already registered"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateSellerProfile(context.Background(), model.NewFormState(), nil)

	var apiErr *Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "phone number already registered", apiErr.Message)
}

func TestInitializeProfessionalPayment(t *testing.T) {
	t.Run("success returns checkout URL", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/initialize-professional-payment", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "S-1", req["sellerId"])

			_, _ = w.Write([]byte(`{"success":true,"checkoutUrl":"https://pay.example.com/x"}`))
		}))
		defer srv.Close()

		init, err := NewClient(srv.URL).InitializeProfessionalPayment(context.Background(), "S-1")
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example.com/x", init.CheckoutURL)
	})

	t.Run("success=false is an error with the server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"message":"account not eligible"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).InitializeProfessionalPayment(context.Background(), "S-1")

		var apiErr *Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "account not eligible", apiErr.Message)
	})
}

func TestVerifyProfessionalPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "prof_payment_S-1_1_x", req["reference"])
		assert.Equal(t, "S-1", req["sellerId"])

		_, _ = w.Write([]byte(`{"success":true,"amount":"49.99"}`))
	}))
	defer srv.Close()

	v, err := NewClient(srv.URL).VerifyProfessionalPayment(context.Background(), "prof_payment_S-1_1_x", "S-1")
	require.NoError(t, err)
	assert.Equal(t, "49.99", v.Amount.String())
}

func TestCheckStoreName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		taken := req["storeName"] == "taken-name"
		_ = json.NewEncoder(w).Encode(map[string]bool{"available": !taken})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	available, err := client.CheckStoreName(context.Background(), "fresh-name")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = client.CheckStoreName(context.Background(), "taken-name")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestLocationLookups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/location/countries":
			_, _ = w.Write([]byte(`[{"name":"Nigeria","countryCode":"NG"}]`))
		case "/location/states/NG":
			_, _ = w.Write([]byte(`[{"name":"Lagos","code":"LA"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	countries, err := client.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "NG", countries[0].CountryCode)

	states, err := client.States(context.Background(), "NG")
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "Lagos", states[0].Name)
}

func TestErrorMessageFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"boom"}`, "boom"},
		{"error field", `{"error":"broke"}`, "broke"},
		{"message preferred", `{"message":"boom","error":"broke"}`, "boom"},
		{"not json", `<html>502</html>`, "request failed"},
		{"empty object", `{}`, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}
