// internal/app/history_test.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/storage/models"
)

// stubStorage keeps records in memory and echoes the pagination it was
// asked for, so handler wiring can be checked without a database.
type stubStorage struct {
	transfers     []*models.TransferRecord
	distributions []*models.DistributionRecord
	lastLimit     int
	lastOffset    int
	failList      bool
}

func (s *stubStorage) SaveTransfer(_ context.Context, rec *models.TransferRecord) error {
	s.transfers = append(s.transfers, rec)
	return nil
}

func (s *stubStorage) ListTransfers(_ context.Context, address string, limit, offset int) ([]*models.TransferRecord, error) {
	if s.failList {
		return nil, errors.New("connection reset")
	}
	s.lastLimit, s.lastOffset = limit, offset
	var out []*models.TransferRecord
	for _, rec := range s.transfers {
		if rec.FromAddress == address || rec.ToAddress == address {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubStorage) SaveDistribution(_ context.Context, rec *models.DistributionRecord) error {
	s.distributions = append(s.distributions, rec)
	return nil
}

func (s *stubStorage) ListDistributions(_ context.Context, recipient string, limit, offset int) ([]*models.DistributionRecord, error) {
	if s.failList {
		return nil, errors.New("connection reset")
	}
	s.lastLimit, s.lastOffset = limit, offset
	var out []*models.DistributionRecord
	for _, rec := range s.distributions {
		if rec.Recipient == recipient {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubStorage) RunMigrations() error { return nil }

func newHistoryServer(store *stubStorage) *httptest.Server {
	mux := http.NewServeMux()
	newHistoryAPI(store, zap.NewNop()).register(mux)
	return httptest.NewServer(mux)
}

func TestHistoryTransfersByAddress(t *testing.T) {
	store := &stubStorage{
		transfers: []*models.TransferRecord{
			{FromAddress: "pair", ToAddress: "buyer", Direction: "buy", Requested: 10000, Delivered: 9650, FeesTaken: 350},
			{FromAddress: "alice", ToAddress: "bob", Direction: "none", Requested: 100, Delivered: 100},
		},
	}
	srv := newHistoryServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/transfers?address=buyer")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var recs []*models.TransferRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(9650), recs[0].Delivered)
	assert.Equal(t, defaultHistoryLimit, store.lastLimit)
	assert.Equal(t, 0, store.lastOffset)
}

func TestHistoryDistributionsByRecipient(t *testing.T) {
	store := &stubStorage{
		distributions: []*models.DistributionRecord{
			{Recipient: "A", Deposit: 300, Payout: 298},
			{Recipient: "B", Deposit: 100, Payout: 99},
		},
	}
	srv := newHistoryServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/distributions?recipient=A&limit=10&offset=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recs []*models.DistributionRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(298), recs[0].Payout)
	assert.Equal(t, 10, store.lastLimit)
	assert.Equal(t, 5, store.lastOffset)
}

func TestHistoryRequiresFilterParam(t *testing.T) {
	srv := newHistoryServer(&stubStorage{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/transfers")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/history/distributions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryLimitClamped(t *testing.T) {
	store := &stubStorage{}
	srv := newHistoryServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/transfers?address=x&limit=99999")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, maxHistoryLimit, store.lastLimit)
}

func TestHistoryQueryFailure(t *testing.T) {
	srv := newHistoryServer(&stubStorage{failList: true})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/transfers?address=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
