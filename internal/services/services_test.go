package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func nullLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "providerId", "provider", "email", "name", "createdAt", "updatedAt"})
}

func addUser(rows *pgxmock.Rows, id uuid.UUID, name string) *pgxmock.Rows {
	return rows.AddRow(id, "gh-"+name, models.ProviderGitHub, name+"@example.com", name, testTime, testTime)
}

func strPtr(s string) *string { return &s }

// anyArgs matches n arguments of any value
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
