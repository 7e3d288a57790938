package jobs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/articlegen-backend/internal/data/repos/testutil"
	types "github.com/yungbote/articlegen-backend/internal/domain"
	"github.com/yungbote/articlegen-backend/internal/pkg/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: t.Context(), Tx: tx}

	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	queued := &types.JobRun{
		ID:        uuid.New(),
		JobType:   "article_generation",
		Status:    "queued",
		Stage:     "queued",
		Payload:   datatypes.JSON([]byte("{}")),
		Result:    datatypes.JSON([]byte("{}")),
		CreatedAt: now.Add(-3 * time.Hour),
		UpdatedAt: now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "article_generation",
		Status:      "failed",
		Stage:       "failed",
		Attempts:    0,
		LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "article_generation",
		Status:      "running",
		Stage:       "running",
		Attempts:    0,
		HeartbeatAt: ptrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	for _, job := range []*types.JobRun{queued, failed, staleRunning} {
		if _, err := repo.Create(dbc, job); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.GetByID(dbc, queued.ID)
	if err != nil || got == nil || got.ID != queued.ID {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}

	rows, err := repo.List(dbc, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("List: expected 3 rows, got %d", len(rows))
	}

	// ClaimNextRunnable walks the runnable set in created_at ASC order.
	claim1, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #1: %v", err)
	}
	if claim1 == nil || claim1.ID != queued.ID {
		t.Fatalf("ClaimNextRunnable #1: expected %v got %v", queued.ID, claim1)
	}

	claim2, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #2: %v", err)
	}
	if claim2 == nil || claim2.ID != failed.ID {
		t.Fatalf("ClaimNextRunnable #2: expected %v got %v", failed.ID, claim2)
	}

	claim3, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #3: %v", err)
	}
	if claim3 == nil || claim3.ID != staleRunning.ID {
		t.Fatalf("ClaimNextRunnable #3: expected %v got %v", staleRunning.ID, claim3)
	}

	claim4, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #4: %v", err)
	}
	if claim4 != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v", claim4)
	}

	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": "failed", "stage": "error"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	applied, err := repo.UpdateFieldsUnlessStatus(dbc, staleRunning.ID, []string{"canceled"}, map[string]interface{}{"status": "succeeded"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if !applied {
		t.Fatalf("UpdateFieldsUnlessStatus: expected applied=true")
	}

	canceled := &types.JobRun{
		ID:      uuid.New(),
		JobType: "article_generation",
		Status:  "canceled",
		Stage:   "canceled",
		Payload: datatypes.JSON([]byte("{}")),
		Result:  datatypes.JSON([]byte("{}")),
	}
	if _, err := repo.Create(dbc, canceled); err != nil {
		t.Fatalf("seed canceled: %v", err)
	}
	applied, err = repo.UpdateFieldsUnlessStatus(dbc, canceled.ID, []string{"canceled"}, map[string]interface{}{"status": "succeeded"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus (guarded): %v", err)
	}
	if applied {
		t.Fatalf("UpdateFieldsUnlessStatus (guarded): expected applied=false for a canceled job")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
