package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/propline/entity-notes-engine/internal/domain"
	"github.com/propline/entity-notes-engine/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest 记录一次后端收到的请求
type capturedRequest struct {
	method string
	path   string
	body   map[string]*string
}

// fakeBackend 可编程的后端桩
type fakeBackend struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
}

func (b *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]*string
		_ = json.Unmarshal(data, &body)

		b.mu.Lock()
		b.requests = append(b.requests, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			body:   body,
		})
		status := b.status
		b.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	}
}

func (b *fakeBackend) last() capturedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func newTestClient(t *testing.T, backend *fakeBackend) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, nil), server
}

func TestPushSyncEndpoints(t *testing.T) {
	tests := []struct {
		entityType domain.EntityType
		wantMethod string
		wantPath   string
		wantField  string
	}{
		{domain.EntityLandlord, http.MethodPut, "/landlords/e-1", "notes"},
		{domain.EntityApplicant, http.MethodPut, "/applicants/e-1", "notes"},
		{domain.EntityVendor, http.MethodPut, "/vendors/e-1", "notes"},
		{domain.EntityProperty, http.MethodPatch, "/properties/e-1", "management_notes"},
	}

	for _, tt := range tests {
		t.Run(string(tt.entityType), func(t *testing.T) {
			backend := &fakeBackend{}
			client, _ := newTestClient(t, backend)

			err := client.PushSync(context.Background(), &domain.NoteRecord{
				EntityType: tt.entityType,
				EntityID:   "e-1",
				Content:    "note body",
			})
			require.NoError(t, err)

			got := backend.last()
			assert.Equal(t, tt.wantMethod, got.method)
			assert.Equal(t, tt.wantPath, got.path)
			require.Contains(t, got.body, tt.wantField)
			require.NotNil(t, got.body[tt.wantField])
			assert.Equal(t, "note body", *got.body[tt.wantField])
		})
	}
}

func TestPushSyncClearedContentSendsNull(t *testing.T) {
	backend := &fakeBackend{}
	client, _ := newTestClient(t, backend)

	err := client.PushSync(context.Background(), &domain.NoteRecord{
		EntityType: domain.EntityProperty,
		EntityID:   "p-1",
		Content:    "",
	})
	require.NoError(t, err)

	// 清空以 null 表达，而不是空字符串
	got := backend.last()
	require.Contains(t, got.body, "management_notes")
	assert.Nil(t, got.body["management_notes"])
}

func TestPushSyncNotFoundIsTerminal(t *testing.T) {
	backend := &fakeBackend{status: http.StatusNotFound}
	client, _ := newTestClient(t, backend)

	record := &domain.NoteRecord{
		EntityType: domain.EntityLandlord,
		EntityID:   "ll-gone",
		Content:    "orphaned edit",
	}

	err := client.PushSync(context.Background(), record)
	assert.ErrorIs(t, err, code.ErrorRemoteGone)
	assert.True(t, client.IsGone(domain.EntityLandlord, "ll-gone"))
	assert.Equal(t, 1, backend.count())

	// 404 为终态：后续投递直接跳过，不再发请求
	err = client.PushSync(context.Background(), record)
	assert.ErrorIs(t, err, code.ErrorRemoteGone)
	assert.Equal(t, 1, backend.count())

	// 其它实体不受影响
	assert.False(t, client.IsGone(domain.EntityLandlord, "ll-other"))
}

func TestPushSyncServerErrorIsRetryable(t *testing.T) {
	backend := &fakeBackend{status: http.StatusInternalServerError}
	client, _ := newTestClient(t, backend)

	record := &domain.NoteRecord{
		EntityType: domain.EntityVendor,
		EntityID:   "v-1",
		Content:    "will retry later",
	}

	err := client.PushSync(context.Background(), record)
	require.Error(t, err)
	assert.NotErrorIs(t, err, code.ErrorRemoteGone)

	// 非 404 失败不进入终态，下一次保存仍会投递
	assert.False(t, client.IsGone(domain.EntityVendor, "v-1"))
	err = client.PushSync(context.Background(), record)
	require.Error(t, err)
	assert.Equal(t, 2, backend.count())
}

func TestPushSyncConnectionFailure(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, nil)
	server.Close()

	err := client.PushSync(context.Background(), &domain.NoteRecord{
		EntityType: domain.EntityApplicant,
		EntityID:   "a-1",
		Content:    "unreachable",
	})
	require.Error(t, err)
	assert.False(t, client.IsGone(domain.EntityApplicant, "a-1"))
}

func TestPushSyncUnknownEntityType(t *testing.T) {
	backend := &fakeBackend{}
	client, _ := newTestClient(t, backend)

	err := client.PushSync(context.Background(), &domain.NoteRecord{
		EntityType: "tenant",
		EntityID:   "t-1",
	})
	assert.ErrorIs(t, err, code.ErrorInvalidEntityType)
	assert.Equal(t, 0, backend.count())
}

func TestPushReportsOutcomeViaCallback(t *testing.T) {
	backend := &fakeBackend{}
	client, _ := newTestClient(t, backend)

	done := make(chan error, 1)
	client.Push(&domain.NoteRecord{
		EntityType: domain.EntityLandlord,
		EntityID:   "ll-1",
		Content:    "async push",
	}, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("push callback never fired")
	}
	assert.Equal(t, 1, backend.count())
}
