package platform

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenNeedsRefresh(t *testing.T) {
	assert.False(t, tokenNeedsRefresh(nil, time.Minute))

	past := time.Now().Add(-time.Minute)
	assert.True(t, tokenNeedsRefresh(&past, time.Minute))

	insideMargin := time.Now().Add(30 * time.Second)
	assert.True(t, tokenNeedsRefresh(&insideMargin, time.Minute))

	outsideMargin := time.Now().Add(time.Hour)
	assert.False(t, tokenNeedsRefresh(&outsideMargin, time.Minute))
}

// Concurrent callers hitting an expired token must share a single provider
// refresh; the losing callers observe the winner's rotated tokens.
func TestConcurrentRefreshSharesOneProviderCall(t *testing.T) {
	var tokenCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenCalls, 1)
		time.Sleep(50 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"a2","refresh_token":"r2","expires_in":3600,"open_id":"o1"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	expired := time.Now().Add(-time.Minute)
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:       1,
		Platform:     models.PlatformTikTok,
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    &expired,
	})
	require.NoError(t, err)

	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = adapter.EnsureValidToken(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(&tokenCalls))

	account, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "a2", account.AccessToken)
	assert.Equal(t, "r2", account.RefreshToken)
}
