package middleware

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("redaction", func() {
	It("should mask sensitive keys at any depth", func() {
		out := redactBody([]byte(`{"email":"a@b.com","password":"x","paymentDetails":{"transactionId":"T1","amount":46800}}`))

		Expect(out).To(ContainSubstring(`"email":"a@b.com"`))
		Expect(out).To(ContainSubstring(`"password":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"transactionId":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"amount":46800`))
	})

	It("should mask the authorization header", func() {
		headers := map[string][]string{"Authorization": {"Bearer abc"}, "Accept": {"application/json"}}

		out := redactHeaders(headers)

		Expect(out["Authorization"]).To(Equal(filtered))
		Expect(out["Accept"]).To(Equal("application/json"))
	})

	It("should refuse non-JSON bodies that mention secrets", func() {
		Expect(redactBody([]byte("token=abc"))).To(HavePrefix("[FILTERED"))
		Expect(strings.Contains(redactBody([]byte("hello")), "hello")).To(BeTrue())
	})
})
