package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jarcoal/httpmock"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/jsonrpc"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	const rpcURL = "http://example.local/rpc"

	It("sends a JSON-RPC 2.0 envelope and decodes the result", func() {
		var ids []float64
		httpmock.RegisterResponder("POST", rpcURL, func(req *http.Request) (*http.Response, error) {
			Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))

			body, _ := io.ReadAll(req.Body)
			var payload map[string]any
			Expect(json.Unmarshal(body, &payload)).To(Succeed())
			Expect(payload["jsonrpc"]).To(Equal("2.0"))
			Expect(payload["method"]).To(Equal("eth_blockNumber"))
			Expect(payload["params"]).To(Equal([]any{}))
			ids = append(ids, payload["id"].(float64))

			return httpmock.NewStringResponse(200, `{"jsonrpc":"2.0","id":1,"result":"0x10"}`), nil
		})

		rpc := jsonrpc.NewClient(client, rpcURL)

		var result string
		Expect(rpc.Call(context.Background(), "eth_blockNumber", nil, &result)).To(Succeed())
		Expect(result).To(Equal("0x10"))

		Expect(rpc.Call(context.Background(), "eth_blockNumber", nil, &result)).To(Succeed())
		Expect(ids).To(Equal([]float64{1, 2}))
	})

	It("returns the error object of the response", func() {
		httpmock.RegisterResponder("POST", rpcURL, httpmock.NewStringResponder(
			200,
			`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`,
		))

		err := jsonrpc.NewClient(client, rpcURL).Call(context.Background(), "m", nil, new(string))

		var rpcErr *jsonrpc.Error
		Expect(errors.As(err, &rpcErr)).To(BeTrue())
		Expect(rpcErr.Code).To(Equal(-32602))
		Expect(err.Error()).To(ContainSubstring("rpc error"))
	})

	It("classifies non-2xx responses as HTTP errors", func() {
		httpmock.RegisterResponder("POST", rpcURL, httpmock.NewStringResponder(429, "slow down"))

		err := jsonrpc.NewClient(client, rpcURL).Call(context.Background(), "m", nil, new(string))

		var httpErr *ctshttp.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(429))
		Expect(httpErr.Body).To(Equal("slow down"))
	})

	It("classifies transport failures as network errors", func() {
		httpmock.RegisterResponder("POST", rpcURL, httpmock.NewErrorResponder(errors.New("connection refused")))

		err := jsonrpc.NewClient(client, rpcURL).Call(context.Background(), "m", nil, new(string))

		var netErr *ctshttp.NetworkError
		Expect(errors.As(err, &netErr)).To(BeTrue())
	})

	DescribeTable("classifies undecodable bodies as parse errors", func(body string) {
		httpmock.RegisterResponder("POST", rpcURL, httpmock.NewStringResponder(200, body))

		err := jsonrpc.NewClient(client, rpcURL).Call(context.Background(), "m", nil, new(int))

		var parseErr *ctshttp.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	},
		Entry("not JSON", "<html>"),
		Entry("missing result", `{"jsonrpc":"2.0","id":1}`),
		Entry("wrong result type", `{"jsonrpc":"2.0","id":1,"result":"0x10"}`),
	)

	It("requires an HTTP client", func() {
		err := jsonrpc.NewClient(nil, rpcURL).Call(context.Background(), "m", nil, nil)
		Expect(err).To(MatchError(ContainSubstring("http client is nil")))
	})
})
