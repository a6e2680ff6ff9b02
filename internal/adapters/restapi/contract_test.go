package restapi

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"golang.org/x/net/publicsuffix"

	"github.com/iskrendev/insurance-portal/internal/adapters/contracttest"
	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

func TestContract_InsuranceAPI(t *testing.T) {
	contracttest.RunInsuranceAPI(t, func(t *testing.T, user *domain.User) (insuranceapi.Client, contracttest.CleanupFunc) {
		_, srv := newFakeBackend(t, user)

		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			t.Fatalf("cookiejar: %v", err)
		}
		if user != nil {
			u, _ := url.Parse(srv.URL)
			jar.SetCookies(u, []*http.Cookie{{Name: "JSESSIONID", Value: testSession, Path: "/"}})
		}
		hc := &http.Client{Jar: jar, Transport: srv.Client().Transport}

		c, err := New(srv.URL, WithHTTPClient(hc))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return c, nil
	})
}
