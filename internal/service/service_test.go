package service

import (
	"context"
	"testing"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/pipeline"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo, err := repository.New("sqlite://", 1, 1)
	if err != nil {
		t.Fatalf("repository.New() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return repo
}

func newTestAuth(t *testing.T, repo *repository.Repository, verifier IdentityVerifier) *AuthService {
	t.Helper()
	auth, err := NewAuthService(repo, AuthOptions{
		SecretKey:  "test-secret",
		Algorithm:  "HS256",
		BcryptCost: bcrypt.MinCost,
	}, verifier, logger.NewNop())
	if err != nil {
		t.Fatalf("NewAuthService() error: %v", err)
	}
	return auth
}

// testForest predicts 5,000,000 for Mumbai (code 1) and 2,000,000 otherwise
func testForest() *inference.Forest {
	return &inference.Forest{
		NFeatures: 4,
		Trees: []inference.Tree{{Nodes: []inference.Node{
			{Feature: 1, Threshold: 0.5, Left: 1, Right: 2},
			{Feature: -1, Value: 2000000},
			{Feature: -1, Value: 5000000},
		}}},
	}
}

func newTestPipeline(t *testing.T, obs pipeline.Observer) *pipeline.Pipeline {
	t.Helper()
	bank, err := features.NewBank(map[string][]string{
		"city": {"Delhi", "Mumbai", "Bangalore"},
		"type": {"Villa", "Apartment"},
	})
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	schema, err := features.NewSchema([]string{"beds", "city", "size", "type"}, bank, "size")
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	p, err := pipeline.New(schema, bank, testForest(), pipeline.Options{Observer: obs, Version: "v-test"})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}
