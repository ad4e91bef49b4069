package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestPayment_Create_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	payment := &models.Payment{
		StripeSessionID: "cs_test_1",
		CustomerEmail:   "jo@example.com",
		AmountTotal:     decimal.NewFromInt(500),
		Currency:        "usd",
		Status:          models.PaymentStatusCompleted,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), payment)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayment_Create_DuplicateSession(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Payment{StripeSessionID: "cs_dup", Currency: "usd"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestPayment_FindBySessionID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.FindBySessionID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, p)
}

func TestPayment_FindBySessionID_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "stripe_session_id", "customer_email", "amount_total", "currency", "status", "created_at"}).
		AddRow(id, "cs_1", "jo@example.com", "500.00", "usd", "completed", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).WillReturnRows(rows)

	p, err := repo.FindBySessionID(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.True(t, p.AmountTotal.Equal(decimal.NewFromInt(500)))
}

func TestPayment_List(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stripe_session_id"}).AddRow(uuid.New(), "cs_1"))

	payments, total, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, payments, 1)
}

func TestPaywall_FindActiveBySlug(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaywallRepository(gormDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "slug", "course_price", "equipment_deposit", "is_active", "course_id", "cohort_id"}).
		AddRow(id, "Capacity 101", "capacity-101", "500.00", "0.00", true, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "paywalls" WHERE slug = $1 AND is_active = $2`)).
		WillReturnRows(rows)

	p, err := repo.FindActiveBySlug(context.Background(), "capacity-101")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Nil(t, p.Course)
}

func TestPaywall_FindActiveByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaywallRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "paywalls"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	_, err := repo.FindActiveByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaywall_Deactivate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaywallRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "paywalls" SET "is_active"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Deactivate(context.Background(), uuid.New()))
}

func TestPaywall_Deactivate_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaywallRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "paywalls"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.ErrorIs(t, repo.Deactivate(context.Background(), uuid.New()), repository.ErrNotFound)
}

func TestEnrollment_MemberExists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormEnrollmentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "cohort_members"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.MemberExists(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnrollment_AddMember_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormEnrollmentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "cohort_members"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.AddMember(context.Background(), &models.CohortMember{
		CohortID: uuid.New(),
		UserID:   uuid.New(),
		Role:     models.MemberRoleParticipant,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestEnrollment_FindProfileByEmail_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormEnrollmentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE email = $1 AND "profiles"."deleted_at" IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	_, err := repo.FindProfileByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCharge_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormChargeRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "scheduled_charges"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.ScheduledCharge{
		Amount:      decimal.NewFromInt(250),
		Description: models.EquipmentDepositDescription,
		PaywallID:   uuid.New(),
		Status:      models.ChargeStatusScheduled,
	})
	assert.NoError(t, err)
}

func TestEmailLog_GetLogs_Filtered(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewEmailLogRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "email_log" WHERE status = $1`)).
		WithArgs(models.EmailStatusFailed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "email_log" WHERE status = $1 ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_email", "status"}).
			AddRow(uuid.New(), "a@example.com", "failed").
			AddRow(uuid.New(), "b@example.com", "failed"))

	logs, total, err := repo.GetLogs(context.Background(), models.EmailLogFilter{Status: models.EmailStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)
}

func TestCatalog_FindCourse(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCatalogRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "courses"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(id, "Capacity 101"))

	c, err := repo.FindCourse(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Capacity 101", c.Title)
}
