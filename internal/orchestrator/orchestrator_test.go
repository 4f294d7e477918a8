package orchestrator_test

import (
	"context"
	"errors"
	"time"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/orchestrator"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Orchestrator", func() {
	const (
		address      = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
		otherAddress = "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	)

	var (
		ctx     context.Context
		cancel  context.CancelFunc
		fetcher *fakeFetcher
		orch    *orchestrator.Orchestrator
		filter  transaction.Filter
	)

	nextCall := func() *pendingFetch {
		var call *pendingFetch
		Eventually(fetcher.calls).Should(Receive(&call))

		return call
	}

	await := func() orchestrator.State {
		state, err := orch.Await(ctx)
		Expect(err).ToNot(HaveOccurred())

		return state
	}

	record := func(uniqueID string) transaction.Record {
		return transaction.Record{BlockNum: "0x64", UniqueID: uniqueID, Value: "1"}
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		fetcher = newFakeFetcher()
		orch = orchestrator.New(fetcher, query.NewBuilder(query.DefaultPageSize))
		filter = transaction.Filter{
			Address:    address,
			FromBlock:  "100",
			UntilBlock: "latest",
			Direction:  transaction.DirectionOut,
		}
	})

	AfterEach(func() {
		cancel()
	})

	It("starts idle", func() {
		state := orch.State()
		Expect(state.Status).To(Equal(orchestrator.StatusIdle))
		Expect(state.HasNext).To(BeFalse())
		Expect(state.HasPrevious).To(BeFalse())
		Expect(orch.Next(ctx)).To(BeFalse())
		Expect(orch.Retry(ctx)).To(BeFalse())
		Expect(fetcher.calls).ToNot(Receive())
	})

	It("rejects invalid filters without issuing a request", func() {
		filter.Address = "0x123"

		err := orch.SetFilter(ctx, filter)
		var validationErr *transaction.ValidationError
		Expect(errors.As(err, &validationErr)).To(BeTrue())
		Expect(orch.State().Status).To(Equal(orchestrator.StatusIdle))
		Consistently(fetcher.calls, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("loads the first page without a cursor", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		Expect(orch.State().Status).To(Equal(orchestrator.StatusLoading))

		call := nextCall()
		Expect(call.address).To(Equal(address))
		Expect(call.payload.FromBlock).To(Equal("0x64"))
		Expect(call.payload.ToBlock).To(Equal("latest"))
		Expect(call.payload.FromAddress).To(Equal(address))
		Expect(call.payload.ToAddress).To(Equal(transaction.ZeroAddress))
		Expect(call.payload.PageKey).To(BeNil())

		call.succeed(nil, record("a"), record("b"))

		state := await()
		Expect(state.Status).To(Equal(orchestrator.StatusSuccess))
		Expect(state.Records).To(HaveLen(2))
		Expect(state.Display.Rows).To(HaveLen(2))
		Expect(state.Display.Badge.Label).To(Equal("Out"))
		Expect(state.HasNext).To(BeFalse())
		Expect(state.Message()).To(BeEmpty())
	})

	It("follows the cursor returned by the previous page", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(token("tok1"), record("a"))

		state := await()
		Expect(state.HasNext).To(BeTrue())

		Expect(orch.Next(ctx)).To(BeTrue())
		call := nextCall()
		Expect(call.payload.PageKey).ToNot(BeNil())
		Expect(*call.payload.PageKey).To(Equal("tok1"))
		call.succeed(nil, record("b"))

		state = await()
		Expect(state.Key.Page).To(Equal(1))
		Expect(state.HasNext).To(BeFalse())
		Expect(state.HasPrevious).To(BeTrue())
		Expect(orch.Next(ctx)).To(BeFalse())
	})

	It("goes back to earlier pages with their original cursors", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(token("tok1"), record("a"))
		await()

		Expect(orch.Next(ctx)).To(BeTrue())
		nextCall().succeed(token("tok2"), record("b"))
		await()

		Expect(orch.Previous(ctx)).To(BeTrue())
		call := nextCall()
		Expect(call.payload.PageKey).To(BeNil())
		call.succeed(token("tok1-again"), record("a"))
		await()

		Expect(orch.Next(ctx)).To(BeTrue())
		call = nextCall()
		Expect(*call.payload.PageKey).To(Equal("tok1"))
	})

	It("does not go back from the first page", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(nil)
		await()

		Expect(orch.Previous(ctx)).To(BeFalse())
		Expect(fetcher.calls).ToNot(Receive())
	})

	It("restarts from the first page with swapped addresses when the direction flips", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(token("tok1"), record("a"))
		await()

		Expect(orch.Next(ctx)).To(BeTrue())
		nextCall().succeed(token("tok2"), record("b"))
		await()

		Expect(orch.SetDirection(ctx, transaction.DirectionIn)).To(Succeed())
		call := nextCall()
		Expect(call.payload.PageKey).To(BeNil())
		Expect(call.payload.FromAddress).To(Equal(transaction.ZeroAddress))
		Expect(call.payload.ToAddress).To(Equal(address))
		call.succeed(nil, record("c"))

		state := await()
		Expect(state.Key.Page).To(Equal(0))
		Expect(state.HasPrevious).To(BeFalse())
		Expect(state.Display.Badge.Label).To(Equal("In"))
		Expect(orch.Filter().Direction).To(Equal(transaction.DirectionIn))
	})

	It("remembers a direction chosen before an address is supplied", func() {
		Expect(orch.SetDirection(ctx, transaction.DirectionIn)).To(Succeed())
		Expect(orch.State().Status).To(Equal(orchestrator.StatusIdle))
		Expect(orch.Filter().Direction).To(Equal(transaction.DirectionIn))
		Expect(orch.SetDirection(ctx, "up")).ToNot(Succeed())
	})

	It("restarts pagination when the block range changes", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(token("tok1"), record("a"))
		await()
		Expect(orch.Next(ctx)).To(BeTrue())
		nextCall().succeed(nil, record("b"))
		await()

		filter.FromBlock = "0"
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		call := nextCall()
		Expect(call.payload.PageKey).To(BeNil())
		Expect(call.payload.FromBlock).To(Equal("0x0"))
	})

	It("does not refetch when the same filter is set again", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall().succeed(nil, record("a"))
		await()

		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		Expect(orch.State().Status).To(Equal(orchestrator.StatusSuccess))
		Expect(fetcher.calls).ToNot(Receive())
	})

	Context("when a request fails", func() {
		It("enters the error state and retries with the identical payload", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			nextCall().succeed(token("tok1"), record("a"))
			await()
			Expect(orch.Next(ctx)).To(BeTrue())

			first := nextCall()
			first.fail(&ctshttp.HTTPError{StatusCode: 500})

			state := await()
			Expect(state.Status).To(Equal(orchestrator.StatusError))
			Expect(state.Message()).To(ContainSubstring("500"))
			Expect(state.Records).To(BeEmpty())
			Expect(state.HasNext).To(BeFalse())
			Expect(state.HasPrevious).To(BeTrue())

			Expect(orch.Retry(ctx)).To(BeTrue())
			retried := nextCall()
			Expect(retried.payload).To(Equal(first.payload))
			retried.succeed(nil, record("b"))

			state = await()
			Expect(state.Status).To(Equal(orchestrator.StatusSuccess))
			Expect(state.Key.Page).To(Equal(1))
		})

		It("does not retry outside the error state", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			Expect(orch.Retry(ctx)).To(BeFalse())
		})

		It("reports a timeout as an error", func() {
			orch = orchestrator.New(
				fetcher,
				query.NewBuilder(query.DefaultPageSize),
				orchestrator.WithTimeout(20*time.Millisecond),
			)
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			nextCall()

			state := await()
			Expect(state.Status).To(Equal(orchestrator.StatusError))
			Expect(state.Message()).To(ContainSubstring("timed out"))

			var netErr *ctshttp.NetworkError
			Expect(errors.As(state.Err, &netErr)).To(BeTrue())
		})

		It("enters the error state when the request context is canceled", func() {
			requestCtx, cancelRequest := context.WithCancel(ctx)
			Expect(orch.SetFilter(requestCtx, filter)).To(Succeed())
			nextCall()
			cancelRequest()

			state := await()
			Expect(state.Status).To(Equal(orchestrator.StatusError))
			Expect(state.Err).To(MatchError(context.Canceled))
			Expect(state.Message()).To(ContainSubstring("request canceled"))

			Expect(orch.Retry(ctx)).To(BeTrue())
			nextCall().succeed(nil, record("a"))
			Expect(await().Status).To(Equal(orchestrator.StatusSuccess))
		})

		It("treats a missing page as a parse error", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			nextCall().respond <- fetchResult{}

			state := await()
			var parseErr *ctshttp.ParseError
			Expect(errors.As(state.Err, &parseErr)).To(BeTrue())
		})
	})

	Context("with responses for superseded requests", func() {
		It("ignores a response for a previous address", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			stale := nextCall()

			other := filter
			other.Address = otherAddress
			Expect(orch.SetFilter(ctx, other)).To(Succeed())
			current := nextCall()

			stale.succeed(token("stale"), record("stale"))
			var completion orchestrator.Completion
			Eventually(orch.Completions()).Should(Receive(&completion))
			Expect(orch.Apply(completion)).To(BeFalse())
			Expect(orch.State().Status).To(Equal(orchestrator.StatusLoading))

			current.succeed(nil, record("current"))
			state := await()
			Expect(state.Records).To(ConsistOf(record("current")))
			Expect(state.HasNext).To(BeFalse())
		})

		It("does not overwrite a recorded cursor with a late first-page response", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			staleFirstPage := nextCall()

			other := filter
			other.Address = otherAddress
			Expect(orch.SetFilter(ctx, other)).To(Succeed())
			nextCall()

			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			nextCall().succeed(token("tok1"), record("a"))
			await()

			Expect(orch.Next(ctx)).To(BeTrue())
			secondPage := nextCall()
			Expect(*secondPage.payload.PageKey).To(Equal("tok1"))

			staleFirstPage.succeed(token("overwritten"), record("stale"))
			var completion orchestrator.Completion
			Eventually(orch.Completions()).Should(Receive(&completion))
			Expect(completion.Key.Page).To(Equal(0))
			Expect(orch.Apply(completion)).To(BeFalse())

			secondPage.succeed(nil, record("b"))
			await()

			Expect(orch.Previous(ctx)).To(BeTrue())
			nextCall().succeed(token("tok1"), record("a"))
			await()

			Expect(orch.Next(ctx)).To(BeTrue())
			Expect(*nextCall().payload.PageKey).To(Equal("tok1"))
		})

		It("lets a superseded request finish without a reader", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			stale := nextCall()

			other := filter
			other.Address = otherAddress
			Expect(orch.SetFilter(ctx, other)).To(Succeed())
			nextCall().succeed(nil, record("current"))
			Expect(await().Records).To(ConsistOf(record("current")))

			stale.succeed(token("stale"), record("stale"))
			Eventually(func() int { return len(orch.Completions()) }).Should(Equal(1))
			Expect(orch.State().Records).To(ConsistOf(record("current")))
		})

		It("ignores responses after the address is cleared", func() {
			Expect(orch.SetFilter(ctx, filter)).To(Succeed())
			call := nextCall()
			orch.Clear()

			call.succeed(token("tok1"), record("a"))
			var completion orchestrator.Completion
			Eventually(orch.Completions()).Should(Receive(&completion))
			Expect(orch.Apply(completion)).To(BeFalse())
			Expect(orch.State().Status).To(Equal(orchestrator.StatusIdle))
		})
	})

	It("stops awaiting when the context is canceled", func() {
		Expect(orch.SetFilter(ctx, filter)).To(Succeed())
		nextCall()

		waitCtx, waitCancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer waitCancel()

		state, err := orch.Await(waitCtx)
		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(state.Status).To(Equal(orchestrator.StatusLoading))
	})
})
