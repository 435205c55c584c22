package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ResumeSense/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated sqlite database whose clock advances one second
// per call, so created_at ordering is deterministic.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func newTestUser(t *testing.T, db *DB, email string) models.User {
	t.Helper()
	u, err := db.CreateUser(context.Background(), email, "user", "hash")
	require.NoError(t, err)
	return u
}

func testFeedback(score int) models.Feedback {
	cat := models.Category{Score: score, Tips: []models.Tip{{Type: models.TipImprove, Tip: "Add metrics", Explanation: "Numbers help"}}}
	return models.Feedback{OverallScore: score, ATS: cat, ToneAndStyle: cat, Content: cat, Structure: cat, Skills: cat}
}

func createResume(t *testing.T, db *DB, userID, company string) string {
	t.Helper()
	id, err := db.CreateResume(context.Background(), models.NewResume{
		UserID:         userID,
		CompanyName:    company,
		JobTitle:       "Engineer",
		JobDescription: "Build things",
		ResumePath:     userID + "/r.pdf",
		ImagePath:      userID + "/r.png",
	})
	require.NoError(t, err)
	return id
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: "postgres"}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{driver: "sqlite"}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Migrate(context.Background()))
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := newTestUser(t, db, "a@example.com")
	assert.NotEmpty(t, u.ID)

	_, err := db.CreateUser(ctx, "a@example.com", "other", "hash")
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := db.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = db.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.UpdatePassword(ctx, u.ID, "new-hash"))
	got, _ = db.GetUserByID(ctx, u.ID)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, db.UpdatePassword(ctx, "nope", "x"), ErrNotFound)
}

func TestRevokedTokens(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	revoked, err := db.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	exp := db.now().Add(time.Hour)
	require.NoError(t, db.RevokeToken(ctx, "jti-1", exp))
	require.NoError(t, db.RevokeToken(ctx, "jti-1", exp), "revoking twice is not an error")

	revoked, err = db.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestPurgeExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")

	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.RevokeToken(ctx, "old", past))
	require.NoError(t, db.RevokeToken(ctx, "new", db.now().Add(time.Hour)))
	require.NoError(t, db.CreatePasswordReset(ctx, "h-old", u.ID, past))

	n, err := db.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	revoked, _ := db.IsTokenRevoked(ctx, "new")
	assert.True(t, revoked)
}

func TestPasswordReset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")

	require.NoError(t, db.CreatePasswordReset(ctx, "hash-1", u.ID, db.now().Add(time.Hour)))

	userID, err := db.ConsumePasswordReset(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	_, err = db.ConsumePasswordReset(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound, "tokens are single use")
}

func TestPasswordReset_Expired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")

	require.NoError(t, db.CreatePasswordReset(ctx, "hash-1", u.ID, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err := db.ConsumePasswordReset(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// 만료된 토큰은 조회 시점에 삭제됨
	var left int
	require.NoError(t, db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM password_resets`).Scan(&left))
	assert.Zero(t, left)

	n, err := db.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateResume_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := db.CreateResume(context.Background(), models.NewResume{UserID: "ghost", ResumePath: "a", ImagePath: "b"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetResume_RequiresFeedback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")
	id := createResume(t, db, u.ID, "Acme")

	_, err := db.GetResume(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := db.GetResumeRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", *rec.CompanyName)
	assert.Nil(t, rec.OverallScore)
	assert.Nil(t, rec.Feedback)

	require.NoError(t, db.CreateFeedback(ctx, id, testFeedback(82)))

	got, err := db.GetResume(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 82, *got.OverallScore)
	assert.Equal(t, 82, got.Feedback.Skills.Score)
	assert.Equal(t, "Numbers help", got.Feedback.Content.Tips[0].Explanation)
	assert.Equal(t, "Build things", *got.JobDescription)
	assert.Equal(t, u.ID+"/r.png", got.ImagePath)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetResume_Missing(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetResume(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetResumeRecord(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFeedback_OnePerResume(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")
	id := createResume(t, db, u.ID, "Acme")

	require.NoError(t, db.CreateFeedback(ctx, id, testFeedback(70)))
	err := db.CreateFeedback(ctx, id, testFeedback(90))
	assert.ErrorIs(t, err, ErrConflict)

	rec, err := db.GetResumeRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 70, *rec.OverallScore, "failed insert must not change the score")
}

func TestCreateFeedback_UnknownResume(t *testing.T) {
	db := newTestDB(t)
	err := db.CreateFeedback(context.Background(), "ghost", testFeedback(70))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFeedback_ClearsScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")
	id := createResume(t, db, u.ID, "Acme")
	require.NoError(t, db.CreateFeedback(ctx, id, testFeedback(70)))

	require.NoError(t, db.DeleteFeedback(ctx, id))

	rec, err := db.GetResumeRecord(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rec.OverallScore)
	_, err = db.GetFeedback(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteFeedback(ctx, id), ErrNotFound)
}

func TestDeleteResume_CascadesFeedback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")
	id := createResume(t, db, u.ID, "Acme")
	require.NoError(t, db.CreateFeedback(ctx, id, testFeedback(70)))

	require.NoError(t, db.DeleteResume(ctx, id))

	_, err := db.GetFeedback(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteResume(ctx, id), ErrNotFound)
}

func TestListUserResumes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")

	first := createResume(t, db, alice.ID, "First")
	pending := createResume(t, db, alice.ID, "Pending")
	second := createResume(t, db, alice.ID, "Second")
	other := createResume(t, db, bob.ID, "Bob")

	require.NoError(t, db.CreateFeedback(ctx, first, testFeedback(50)))
	require.NoError(t, db.CreateFeedback(ctx, second, testFeedback(60)))
	require.NoError(t, db.CreateFeedback(ctx, other, testFeedback(70)))

	list, err := db.ListUserResumes(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2, "resumes without feedback are skipped")
	assert.Equal(t, second, list[0].ID, "newest first")
	assert.Equal(t, first, list[1].ID)
	assert.NotEqual(t, pending, list[0].ID)
	assert.Equal(t, 60, list[0].Feedback.OverallScore)

	empty, err := db.ListUserResumes(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestFeedbackTips_EmptyListsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db, "a@example.com")
	id := createResume(t, db, u.ID, "")

	f := models.Feedback{OverallScore: 10}
	require.NoError(t, db.CreateFeedback(ctx, id, f))

	got, err := db.GetFeedback(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got.ATS.Tips)
	assert.Empty(t, got.ATS.Tips)

	rec, err := db.GetResumeRecord(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rec.CompanyName, "empty strings are stored as NULL")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rw&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=rw"))
}
