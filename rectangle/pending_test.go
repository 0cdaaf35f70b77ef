package rectangle

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouter_PendingLimitRejectsUpdatesWhileSlotHeld(t *testing.T) {
	h := newTestRouter(t, Options{
		Delay: 300 * time.Millisecond,
		Pending: PendingOptions{
			Max:            1,
			AcquireTimeout: 20 * time.Millisecond,
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var first int
	go func() {
		defer wg.Done()
		first = do(t, h, http.MethodPost, "/api/rectangle", `{"width":10,"height":20}`).Code
	}()

	// a primeira atualização está no atraso segurando a única vaga
	time.Sleep(50 * time.Millisecond)

	w := do(t, h, http.MethodPost, "/api/rectangle", `{"width":30,"height":40}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Service Unavailable"}`, w.Body.String())

	// leitura não passa pelo limite
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/rectangle", "").Code)

	wg.Wait()
	assert.Equal(t, http.StatusOK, first)
	assert.JSONEq(t, `{"width":10,"height":20}`, do(t, h, http.MethodGet, "/api/rectangle", "").Body.String())
}

func TestPendingMiddleware_DisabledWhenMaxIsZero(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := PendingMiddleware(PendingOptions{})(next)

	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/api/rectangle", "").Code)
}
