package http_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("errors", func() {
	It("keeps a trimmed, bounded body snippet on HTTP errors", func() {
		httpErr := ctshttp.NewHTTPError(502, strings.NewReader("  bad gateway \n"))
		Expect(httpErr.Error()).To(Equal("API returned status 502: bad gateway"))

		long := ctshttp.NewHTTPError(500, strings.NewReader(strings.Repeat("x", 4096)))
		Expect(len(long.Body)).To(Equal(512))

		Expect(ctshttp.NewHTTPError(404, nil).Error()).To(Equal("API returned status 404"))
	})

	It("unwraps network and parse errors", func() {
		netErr := &ctshttp.NetworkError{Err: context.DeadlineExceeded}
		Expect(errors.Is(fmt.Errorf("wrapped: %w", netErr), context.DeadlineExceeded)).To(BeTrue())

		cause := errors.New("unexpected EOF")
		Expect(errors.Is(&ctshttp.ParseError{Err: cause}, cause)).To(BeTrue())
	})

	DescribeTable("IsSuccess", func(status int, expected bool) {
		Expect(ctshttp.IsSuccess(status)).To(Equal(expected))
	},
		Entry("200", 200, true),
		Entry("204", 204, true),
		Entry("301", 301, false),
		Entry("199", 199, false),
	)

	DescribeTable("IsTransient", func(err error, expected bool) {
		Expect(ctshttp.IsTransient(err)).To(Equal(expected))
	},
		Entry("network", fmt.Errorf("wrapped: %w", &ctshttp.NetworkError{Err: errors.New("refused")}), true),
		Entry("server error", &ctshttp.HTTPError{StatusCode: 503}, true),
		Entry("too many requests", &ctshttp.HTTPError{StatusCode: 429}, true),
		Entry("bad request", &ctshttp.HTTPError{StatusCode: 400}, false),
		Entry("parse", &ctshttp.ParseError{Err: errors.New("bad json")}, false),
	)
})
