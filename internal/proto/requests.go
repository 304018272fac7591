package proto

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

type CreateSessionRequest struct {
	UserID       string
	ActivityType string
	Description  string
	StartedAt    time.Time
}

func (r CreateSessionRequest) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUserID:       structpb.NewStringValue(r.UserID),
		FieldActivityType: structpb.NewStringValue(r.ActivityType),
		FieldDescription:  structpb.NewStringValue(r.Description),
		FieldStartedAt:    structpb.NewStringValue(r.StartedAt.Format(TimeLayout)),
	}}
}

func CreateSessionRequestFromStruct(s *structpb.Struct) (CreateSessionRequest, error) {
	var (
		r   CreateSessionRequest
		err error
	)
	if r.UserID, err = String(s, FieldUserID); err != nil {
		return r, err
	}
	if r.ActivityType, err = String(s, FieldActivityType); err != nil {
		return r, err
	}
	if r.Description, err = OptionalString(s, FieldDescription); err != nil {
		return r, err
	}
	r.StartedAt, err = Time(s, FieldStartedAt)
	return r, err
}

type CloseSessionRequest struct {
	ID            int64
	EndedAt       time.Time
	DurationHours float64
}

func (r CloseSessionRequest) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:            structpb.NewNumberValue(float64(r.ID)),
		FieldEndedAt:       structpb.NewStringValue(r.EndedAt.Format(TimeLayout)),
		FieldDurationHours: structpb.NewNumberValue(r.DurationHours),
	}}
}

func CloseSessionRequestFromStruct(s *structpb.Struct) (CloseSessionRequest, error) {
	var (
		r   CloseSessionRequest
		err error
	)
	if r.ID, err = Int(s, FieldID); err != nil {
		return r, err
	}
	if r.EndedAt, err = Time(s, FieldEndedAt); err != nil {
		return r, err
	}
	d, err := OptionalNumber(s, FieldDurationHours)
	if err != nil {
		return r, err
	}
	if d == nil {
		_, err = field(s, FieldDurationHours)
		return r, err
	}
	r.DurationHours = *d
	return r, nil
}

// ListSessionsRequest also serves FindOpenSession, which ignores Limit.
type ListSessionsRequest struct {
	UserID string
	Limit  int
}

func (r ListSessionsRequest) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUserID: structpb.NewStringValue(r.UserID),
		FieldLimit:  structpb.NewNumberValue(float64(r.Limit)),
	}}
}

func ListSessionsRequestFromStruct(s *structpb.Struct) (ListSessionsRequest, error) {
	var (
		r   ListSessionsRequest
		err error
	)
	if r.UserID, err = String(s, FieldUserID); err != nil {
		return r, err
	}
	if _, ok := s.GetFields()[FieldLimit]; ok {
		limit, err := Int(s, FieldLimit)
		if err != nil {
			return r, err
		}
		r.Limit = int(limit)
	}
	return r, nil
}

type ExportReportRequest struct {
	UserID string
	Year   int
	Month  int
}

func (r ExportReportRequest) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUserID: structpb.NewStringValue(r.UserID),
		FieldYear:   structpb.NewNumberValue(float64(r.Year)),
		FieldMonth:  structpb.NewNumberValue(float64(r.Month)),
	}}
}

func ExportReportRequestFromStruct(s *structpb.Struct) (ExportReportRequest, error) {
	var r ExportReportRequest
	var err error
	if r.UserID, err = String(s, FieldUserID); err != nil {
		return r, err
	}
	year, err := Int(s, FieldYear)
	if err != nil {
		return r, err
	}
	month, err := Int(s, FieldMonth)
	if err != nil {
		return r, err
	}
	r.Year, r.Month = int(year), int(month)
	return r, nil
}

// ExportReportResponse points at an uploaded report.
type ExportReportResponse struct {
	Key  string
	URL  string
	Rows int
}

func (r ExportReportResponse) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldKey:  structpb.NewStringValue(r.Key),
		FieldURL:  structpb.NewStringValue(r.URL),
		FieldRows: structpb.NewNumberValue(float64(r.Rows)),
	}}
}

func ExportReportResponseFromStruct(s *structpb.Struct) (ExportReportResponse, error) {
	var r ExportReportResponse
	var err error
	if r.Key, err = String(s, FieldKey); err != nil {
		return r, err
	}
	if r.URL, err = String(s, FieldURL); err != nil {
		return r, err
	}
	rows, err := Int(s, FieldRows)
	if err != nil {
		return r, err
	}
	r.Rows = int(rows)
	return r, nil
}
