package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cleanwatercheck/waterreport/internal/model"
)

func newMockRepo(t *testing.T) (*ReportRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewReportRepo(db), mock
}

func strPtr(s string) *string { return &s }

func TestCreateInsertsReportAndChildrenInOneTx(t *testing.T) {
    repo, mock := newMockRepo(t)

    rec := model.Report{
        Title:      "Brown tap water",
        UserID:     7,
        Address:    "Musterstr. 1",
        PostalCode: "80331",
        Region:     "Bavaria",
        Notes:      "smells metallic",
        Status:     model.ReportStatusPending,
        PhotoPath:  strPtr("uploads/abc.png"),
    }
    params := []model.ReportParameter{
        {Name: "ph", Value: 6.1, Unit: "", Status: model.ParameterStatusFair},
        {Name: "turbidity", Value: 9.5, Unit: "NTU", Status: model.ParameterStatusPoor},
    }

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO water_quality_reports")).
        WithArgs("Brown tap water", uint64(7), nil, "Musterstr. 1", "80331",
            "Bavaria", "smells metallic", "pending", "uploads/abc.png").
        WillReturnResult(sqlmock.NewResult(41, 1))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_parameters")).
        WithArgs(uint64(41), "ph", 6.1, "", "fair",
            uint64(41), "turbidity", 9.5, "NTU", "poor").
        WillReturnResult(sqlmock.NewResult(1, 2))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_images")).
        WithArgs(uint64(41), "uploads/abc.png").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectCommit()

    id, err := repo.Create(context.Background(), &rec, params)
    require.NoError(t, err)
    assert.Equal(t, uint64(41), id)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackWhenParameterInsertFails(t *testing.T) {
    repo, mock := newMockRepo(t)

    rec := model.Report{Title: "t", UserID: 1, PostalCode: "12345", Region: "X", Status: "pending"}
    params := []model.ReportParameter{{Name: "ph", Value: 7, Status: "good"}}

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO water_quality_reports")).
        WillReturnResult(sqlmock.NewResult(5, 1))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_parameters")).
        WillReturnError(errors.New("Error 1366: Incorrect value"))
    mock.ExpectRollback()

    _, err := repo.Create(context.Background(), &rec, params)
    assert.Error(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMapsMissingRowToNotFound(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)

    _, err := repo.GetByID(context.Background(), 99)
    assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestGetByIDWrapsSchemaMismatch(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectQuery(regexp.QuoteMeta("FROM water_quality_reports")).
        WillReturnError(errors.New("Error 1054: Unknown column 'admin_notes' in 'field list'"))

    _, err := repo.GetByID(context.Background(), 1)
    var se *SchemaError
    require.ErrorAs(t, err, &se)
    assert.Contains(t, se.Error(), "1054")
}

func TestUpdateWritesOnlyProvidedFields(t *testing.T) {
    repo, mock := newMockRepo(t)

    upd := ReportUpdate{
        Title:  strPtr("New title"),
        Status: strPtr(model.ReportStatusReviewed),
    }

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(
        "UPDATE water_quality_reports SET title = ?, status = ?, updated_at = NOW() WHERE id = ?")).
        WithArgs("New title", "reviewed", uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    err := repo.Update(context.Background(), 12, upd)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDistinguishesMissingRowFromNoop(t *testing.T) {
    repo, mock := newMockRepo(t)

    upd := ReportUpdate{Notes: strPtr("same notes")}

    // Zero affected rows plus a failing existence probe means the id
    // does not exist.
    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("UPDATE water_quality_reports SET notes = ?")).
        WithArgs("same notes", uint64(404)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(404)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    err := repo.Update(context.Background(), 404, upd)
    assert.ErrorIs(t, err, ErrReportNotFound)

    repo2, mock2 := newMockRepo(t)

    // Zero affected rows but the row exists: the values simply did not
    // change, which is a success.
    mock2.ExpectBegin()
    mock2.ExpectExec(regexp.QuoteMeta("UPDATE water_quality_reports SET notes = ?")).
        WithArgs("same notes", uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock2.ExpectQuery(regexp.QuoteMeta("SELECT id FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
    mock2.ExpectCommit()

    assert.NoError(t, repo2.Update(context.Background(), 12, upd))
}

func TestUpdateReplacesParameterSetWholesale(t *testing.T) {
    repo, mock := newMockRepo(t)

    params := []model.ReportParameter{
        {Name: "chlorine", Value: 0.3, Unit: "mg/l", Status: "good"},
    }
    upd := ReportUpdate{Params: &params}

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_parameters WHERE report_id = ?")).
        WithArgs(uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 3))
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_parameters")).
        WithArgs(uint64(12), "chlorine", 0.3, "mg/l", "good").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectCommit()

    err := repo.Update(context.Background(), 12, upd)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithNothingToDoTouchesNothing(t *testing.T) {
    repo, mock := newMockRepo(t)

    err := repo.Update(context.Background(), 12, ReportUpdate{})
    assert.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesChildrenBeforeReport(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_parameters WHERE report_id = ?")).
        WithArgs(uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_images WHERE report_id = ?")).
        WithArgs(uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM water_quality_reports WHERE id = ?")).
        WithArgs(uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    err := repo.Delete(context.Background(), 12)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingReportRollsBack(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_parameters")).
        WithArgs(uint64(404)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_images")).
        WithArgs(uint64(404)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(regexp.QuoteMeta("DELETE FROM water_quality_reports")).
        WithArgs(uint64(404)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    err := repo.Delete(context.Background(), 404)
    assert.ErrorIs(t, err, ErrReportNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}
