package proto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestSessionRecord_OpenAndClosed(t *testing.T) {
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	end := start.Add(90 * time.Minute)
	hours := 1.5

	open := SessionRecord{ID: 42, UserID: "ana", ActivityType: "Cadastro", StartedAt: start, Year: 2025, Month: 3, Day: 3}
	closed := open
	closed.EndedAt = &end
	closed.DurationHours = &hours

	s := open.ToStruct()
	assert.IsType(t, &structpb.Value_NullValue{}, s.Fields[FieldEndedAt].GetKind())

	got, err := SessionRecordFromStruct(s)
	require.NoError(t, err)
	assert.Nil(t, got.EndedAt)
	assert.Nil(t, got.DurationHours)
	assert.True(t, start.Equal(got.StartedAt))
	assert.Equal(t, int64(42), got.ID)

	got, err = SessionRecordFromStruct(closed.ToStruct())
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)
	require.NotNil(t, got.DurationHours)
	assert.True(t, end.Equal(*got.EndedAt))
	assert.Equal(t, 1.5, *got.DurationHours)
}

func TestSessionRecordFromStruct_Malformed(t *testing.T) {
	base := func() *structpb.Struct {
		return SessionRecord{ID: 1, UserID: "ana", ActivityType: "Cadastro", StartedAt: time.Now(), Year: 2025, Month: 1, Day: 1}.ToStruct()
	}

	tests := []struct {
		name  string
		patch func(s *structpb.Struct)
	}{
		{name: "missing id", patch: func(s *structpb.Struct) { delete(s.Fields, FieldID) }},
		{name: "fractional id", patch: func(s *structpb.Struct) { s.Fields[FieldID] = structpb.NewNumberValue(1.5) }},
		{name: "id as string", patch: func(s *structpb.Struct) { s.Fields[FieldID] = structpb.NewStringValue("1") }},
		{name: "null user", patch: func(s *structpb.Struct) { s.Fields[FieldUserID] = structpb.NewNullValue() }},
		{name: "bad inicio", patch: func(s *structpb.Struct) { s.Fields[FieldStartedAt] = structpb.NewStringValue("yesterday") }},
		{name: "fim as number", patch: func(s *structpb.Struct) { s.Fields[FieldEndedAt] = structpb.NewNumberValue(3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.patch(s)
			_, err := SessionRecordFromStruct(s)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestSessionList(t *testing.T) {
	records := []SessionRecord{
		{ID: 2, UserID: "ana", ActivityType: "Reuniões", StartedAt: time.Unix(200, 0).UTC(), Year: 1970, Month: 1, Day: 1},
		{ID: 1, UserID: "ana", ActivityType: "Cadastro", StartedAt: time.Unix(100, 0).UTC(), Year: 1970, Month: 1, Day: 1},
	}

	got, err := SessionListFromStruct(SessionListToStruct(records))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "Reuniões", got[0].ActivityType)

	empty, err := SessionListFromStruct(SessionListToStruct(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = SessionListFromStruct(&structpb.Struct{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOptionalSession(t *testing.T) {
	got, err := OptionalSessionFromStruct(OptionalSessionToStruct(nil))
	require.NoError(t, err)
	assert.Nil(t, got)

	r := SessionRecord{ID: 7, UserID: "ana", ActivityType: "Cadastro", StartedAt: time.Unix(0, 0).UTC(), Year: 1970, Month: 1, Day: 1}
	got, err = OptionalSessionFromStruct(OptionalSessionToStruct(&r))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
}

func TestRequests(t *testing.T) {
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	create, err := CreateSessionRequestFromStruct(CreateSessionRequest{UserID: "ana", ActivityType: "Cadastro", StartedAt: at}.ToStruct())
	require.NoError(t, err)
	assert.Equal(t, "ana", create.UserID)
	assert.True(t, at.Equal(create.StartedAt))

	closeReq, err := CloseSessionRequestFromStruct(CloseSessionRequest{ID: 42, EndedAt: at, DurationHours: 0.25}.ToStruct())
	require.NoError(t, err)
	assert.Equal(t, int64(42), closeReq.ID)
	assert.Equal(t, 0.25, closeReq.DurationHours)

	noDuration := CloseSessionRequest{ID: 42, EndedAt: at}.ToStruct()
	delete(noDuration.Fields, FieldDurationHours)
	_, err = CloseSessionRequestFromStruct(noDuration)
	assert.ErrorIs(t, err, ErrMalformed)

	list, err := ListSessionsRequestFromStruct(&structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUserID: structpb.NewStringValue("ana"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Limit)

	export, err := ExportReportRequestFromStruct(ExportReportRequest{UserID: "ana", Year: 2025, Month: 3}.ToStruct())
	require.NoError(t, err)
	assert.Equal(t, ExportReportRequest{UserID: "ana", Year: 2025, Month: 3}, export)

	resp, err := ExportReportResponseFromStruct(ExportReportResponse{Key: "k", URL: "https://x", Rows: 3}.ToStruct())
	require.NoError(t, err)
	assert.Equal(t, ExportReportResponse{Key: "k", URL: "https://x", Rows: 3}, resp)
}

func TestInt_Range(t *testing.T) {
	num := func(f float64) *structpb.Struct {
		return &structpb.Struct{Fields: map[string]*structpb.Value{FieldID: structpb.NewNumberValue(f)}}
	}

	n, err := Int(num(MaxSafeInt), FieldID)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<53), n)

	n, err = Int(num(-MaxSafeInt), FieldID)
	require.NoError(t, err)
	assert.Equal(t, int64(-(1 << 53)), n)

	_, err = Int(num(MaxSafeInt*2), FieldID)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = CloseSessionRequestFromStruct(CloseSessionRequest{ID: 1<<62 + 1, EndedAt: time.Now(), DurationHours: 1}.ToStruct())
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Int(num(1.5), FieldID)
	assert.ErrorIs(t, err, ErrMalformed)
}
