// Package activities provides the local persistence layer for activity
// sessions.
//
// Repository is the contract the session manager depends on; the remote
// gRPC client in internal/client/client implements the same contract.
// SQLiteRepository keeps the table `atividades` in a local SQLite file,
// created by the goose scripts in internal/client/migrations.
//
// Timestamps are stored as RFC 3339 text with their offset, so the instant
// a session started is preserved exactly. The calendar fields ano, mes and
// dia are computed once, in the reference timezone, when the row is inserted.
//
//	repo := activities.NewSQLiteRepository(db, loc)
//	s, err := repo.CreateSession(ctx, models.NewSession{UserID: "ana", ...})
//	err = repo.CloseSession(ctx, s.ID, time.Now(), 1.5)
package activities
