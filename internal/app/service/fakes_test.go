package service

import (
	"context"
	stdjson "encoding/json"
	"sync"

	"massa_gateway/internal/domain/entity"
	massa "massa_gateway/internal/entity"
)

type rpcCall struct {
	Network entity.NetworkSelector
	Method  string
	Params  []any
}

type rpcResponse struct {
	result string
	err    error
}

// fakeRPC answers per network and records every call.
type fakeRPC struct {
	mu        sync.Mutex
	calls     []rpcCall
	responses map[entity.NetworkSelector]rpcResponse
	block     map[entity.NetworkSelector]chan struct{}
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		responses: make(map[entity.NetworkSelector]rpcResponse),
		block:     make(map[entity.NetworkSelector]chan struct{}),
	}
}

func (f *fakeRPC) on(network entity.NetworkSelector, result string) *fakeRPC {
	f.responses[network] = rpcResponse{result: result}
	return f
}

func (f *fakeRPC) fail(network entity.NetworkSelector, err error) *fakeRPC {
	f.responses[network] = rpcResponse{err: err}
	return f
}

func (f *fakeRPC) Call(ctx context.Context, network entity.NetworkSelector, method string, params ...any) (stdjson.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rpcCall{Network: network, Method: method, Params: params})
	resp := f.responses[network]
	gate := f.block[network]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, entity.WrapServiceError(entity.KindTransportError, "RPC request timed out", ctx.Err())
		}
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return stdjson.RawMessage(resp.result), nil
}

func (f *fakeRPC) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeCourses struct {
	course *entity.CourseGoal
	err    error
	calls  int
}

func (f *fakeCourses) GetCourseGoal(_ context.Context, _ string) (*entity.CourseGoal, error) {
	f.calls++
	return f.course, f.err
}

type goalPost struct {
	URL           string
	Authorization string
	Payload       any
}

type fakeGoals struct {
	reply *massa.GoalsReply
	err   error
	posts []goalPost
}

func (f *fakeGoals) PostMessage(_ context.Context, goalsURL, authorization string, payload any) (*massa.GoalsReply, error) {
	f.posts = append(f.posts, goalPost{URL: goalsURL, Authorization: authorization, Payload: payload})
	return f.reply, f.err
}
