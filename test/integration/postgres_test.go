// Package integration exercises PostgresStore against a real PostgreSQL
// instance started with testcontainers-go, using a shared
// container-per-package setup.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chemverify/chemverify/internal/hashchain"
	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/persistence"
)

var (
	sharedCfg     persistence.Config
	containerOnce sync.Once
	containerErr  error
)

func getOrCreateSharedDatabase(t *testing.T) persistence.Config {
	t.Helper()

	containerOnce.Do(func() {
		ctx := context.Background()
		t.Log("starting shared PostgreSQL testcontainer")

		pgContainer, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("chemverify_test"),
			postgres.WithUsername("chemverify"),
			postgres.WithPassword("chemverify"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			containerErr = err
			return
		}

		host, err := pgContainer.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		port, err := pgContainer.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = err
			return
		}

		sharedCfg = persistence.Config{
			Host:            host,
			Port:            port.Int(),
			User:            "chemverify",
			Password:        "chemverify",
			Database:        "chemverify_test",
			SSLMode:         "disable",
			MaxConns:        5,
			MinConns:        1,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 15 * time.Minute,
		}
	})

	require.NoError(t, containerErr, "failed to start shared postgres container")
	return sharedCfg
}

func newTestStore(t *testing.T) *persistence.PostgresStore {
	t.Helper()
	cfg := getOrCreateSharedDatabase(t)
	store, err := persistence.NewPostgresStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func sampleRun(id string) (model.Run, []model.ExtractedClaim, []model.ValidationFinding) {
	text := "The mixture was stirred for 2 h at 25 C."
	kind := model.KindMalformedChemicalToken

	run := model.Run{
		ID:            id,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Mode:          model.ModeVerifyOnly,
		Status:        model.RunStatusCompleted,
		InputText:     &text,
		PolicyProfile: "Default",
		PreviousHash:  hashchain.GenesisHash,
		CurrentHash:   "deadbeef",
		ModelName:     "",
		RiskScore:     0.05,
	}
	claims := []model.ExtractedClaim{
		{
			ID:              id + "-c1",
			RunID:           id,
			Kind:            model.ClaimNumericWithUnit,
			RawText:         "2 h",
			NormalizedValue: "2",
			Unit:            "h",
			SourceLocator:   model.FormatLocator(model.Span{Start: 22, End: 25}),
		},
	}
	findings := []model.ValidationFinding{
		{
			ID:            id + "-f1",
			RunID:         id,
			ClaimID:       &claims[0].ID,
			ValidatorName: "MalformedChemicalTokenValidator",
			RuleID:        "malformed-chemical-token",
			RuleVersion:   "v1",
			Status:        model.StatusPass,
			Message:       "units are well formed",
			Confidence:    1.0,
			Kind:          &kind,
		},
	}
	return run, claims, findings
}

func TestPostgresStore_SaveAndGetRunRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, claims, findings := sampleRun("run-roundtrip")
	require.NoError(t, store.SaveRun(ctx, run, claims, findings))

	loaded, loadedClaims, loadedFindings, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, run.ID, loaded.ID)
	require.Equal(t, run.PolicyProfile, loaded.PolicyProfile)
	require.Len(t, loadedClaims, 1)
	require.Len(t, loadedFindings, 1)
	require.Equal(t, claims[0].RawText, loadedClaims[0].RawText)
	require.Equal(t, findings[0].Message, loadedFindings[0].Message)
}

func TestPostgresStore_GetRunNotFound(t *testing.T) {
	store := newTestStore(t)
	_, _, _, err := store.GetRun(context.Background(), "does-not-exist")
	require.Error(t, err)
	var notFound persistence.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestPostgresStore_LatestHashTracksMostRecentRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run1, claims1, findings1 := sampleRun("run-hash-1")
	run1.CurrentHash = "hash-one"
	require.NoError(t, store.SaveRun(ctx, run1, claims1, findings1))

	run2, claims2, findings2 := sampleRun("run-hash-2")
	run2.CreatedAt = run1.CreatedAt.Add(time.Minute)
	run2.PreviousHash = run1.CurrentHash
	run2.CurrentHash = "hash-two"
	require.NoError(t, store.SaveRun(ctx, run2, claims2, findings2))

	latest, err := store.LatestHash(ctx)
	require.NoError(t, err)
	require.Equal(t, "hash-two", latest)
}
