package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/serializer"
	"github.com/lk2023060901/protoframe-go/pkg/util/conc"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

type sample struct {
	Name string `json:"name"`
}

type DispatchSuite struct {
	suite.Suite

	table *Table
}

func (s *DispatchSuite) SetupTest() {
	s.table = New(serializer.JSONSerializer{})
}

func (s *DispatchSuite) TestRegisterAndDispatch() {
	var got *sample
	var gotResult framing.ParseResult

	err := s.table.Register(1, 2, Route{
		NewMessage: func() any { return &sample{} },
		Handler: func(_ context.Context, result framing.ParseResult, msg any) error {
			gotResult = result
			got = msg.(*sample)
			return nil
		},
	})
	s.NoError(err)

	err = s.table.Dispatch(context.Background(), framing.ParseResult{
		FileID:   1,
		MsgID:    2,
		SysID:    9,
		HasSysID: true,
		Payload:  []byte(`{"name":"foo"}`),
	})
	s.NoError(err)
	s.Require().NotNil(got)
	s.Equal("foo", got.Name)
	s.Equal(framing.SystemID(9), gotResult.SysID)
	s.Nil(gotResult.Payload)
}

func (s *DispatchSuite) TestRegisterDuplicated() {
	route := Route{
		NewMessage: func() any { return &sample{} },
		Handler:    func(context.Context, framing.ParseResult, any) error { return nil },
	}
	s.NoError(s.table.Register(1, 1, route))
	s.ErrorIs(s.table.Register(1, 1, route), merr.ErrRouteDuplicated)

	// 相同 fileID 不同 msgID 可以注册。
	s.NoError(s.table.Register(1, 2, route))
	s.Len(s.table.Keys(), 2)
}

func (s *DispatchSuite) TestRegisterInvalid() {
	handler := func(context.Context, framing.ParseResult, any) error { return nil }

	s.ErrorIs(s.table.Register(256, 1, Route{
		NewMessage: func() any { return &sample{} },
		Handler:    handler,
	}), merr.ErrRouteInvalid)

	s.ErrorIs(s.table.Register(1, 1, Route{Handler: handler}), merr.ErrRouteInvalid)

	s.ErrorIs(s.table.Register(1, 1, Route{
		NewMessage: func() any { return &sample{} },
	}), merr.ErrRouteInvalid)
}

func (s *DispatchSuite) TestDispatchNotFound() {
	err := s.table.Dispatch(context.Background(), framing.ParseResult{FileID: 7, MsgID: 7})
	s.ErrorIs(err, merr.ErrRouteNotFound)
}

func (s *DispatchSuite) TestDispatchDeserializeFail() {
	s.NoError(s.table.Register(1, 1, Route{
		NewMessage: func() any { return &sample{} },
		Handler:    func(context.Context, framing.ParseResult, any) error { return nil },
	}))

	err := s.table.Dispatch(context.Background(), framing.ParseResult{
		FileID:  1,
		MsgID:   1,
		Payload: []byte("{not json"),
	})
	s.ErrorIs(err, merr.ErrDeserializeFail)
}

func (s *DispatchSuite) TestDispatchEmptyPayloadSkipsUnmarshal() {
	called := false
	s.NoError(s.table.Register(1, 1, Route{
		NewMessage: func() any { return &sample{} },
		Handler: func(_ context.Context, _ framing.ParseResult, msg any) error {
			called = true
			s.Empty(msg.(*sample).Name)
			return nil
		},
	}))

	s.NoError(s.table.Dispatch(context.Background(), framing.ParseResult{FileID: 1, MsgID: 1}))
	s.True(called)
}

func (s *DispatchSuite) TestDispatchAsync() {
	pool, err := conc.NewPool(2)
	s.Require().NoError(err)
	defer pool.Release()

	var wg sync.WaitGroup
	wg.Add(1)

	var got *sample
	table := New(serializer.JSONSerializer{}, WithPool(pool))
	s.NoError(table.Register(1, 1, Route{
		NewMessage: func() any { return &sample{} },
		Handler: func(_ context.Context, _ framing.ParseResult, msg any) error {
			defer wg.Done()
			got = msg.(*sample)
			return nil
		},
	}))

	s.NoError(table.Dispatch(context.Background(), framing.ParseResult{
		FileID:  1,
		MsgID:   1,
		Payload: []byte(`{"name":"async"}`),
	}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("handler not invoked in time")
	}
	s.Equal("async", got.Name)
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}
