package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{name: "default", url: "/", want: LocalePT},
		{name: "header english", url: "/", header: "en-GB,en;q=0.8", want: LocaleEN},
		{name: "header portuguese", url: "/", header: "pt-BR", want: LocalePT},
		{name: "query wins", url: "/?lang=en", header: "pt-BR", want: LocaleEN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tc.url, nil)
			if tc.header != "" {
				c.Request.Header.Set("Accept-Language", tc.header)
			}
			if got := ResolveLocale(c); got != tc.want {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(LocaleEN, "error.claim_not_found"); got != "Claim not found" {
		t.Fatalf("unexpected english message: %s", got)
	}
	if got := T("fr-FR", "error.claim_not_found"); got != "Avaria não encontrada" {
		t.Fatalf("unknown locale should fall back to portuguese: %s", got)
	}
	if got := T(LocalePT, "missing.key"); got != "missing.key" {
		t.Fatalf("missing key should echo the key: %s", got)
	}
	if got := Sprintf(LocalePT, "error.password_min_length", 8); got != "A senha deve ter pelo menos 8 caracteres" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestLocalesShareKeys(t *testing.T) {
	for key := range messages[LocalePT] {
		if _, ok := messages[LocaleEN][key]; !ok {
			t.Fatalf("english table missing key %s", key)
		}
	}
}
