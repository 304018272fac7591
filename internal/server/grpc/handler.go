package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/worklog/internal/common"
	pb "github.com/dmitrijs2005/worklog/internal/proto"
	"github.com/dmitrijs2005/worklog/internal/server/models"
	"github.com/dmitrijs2005/worklog/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(pb.PingOK), nil
}

func (s *GRPCServer) CreateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.CreateSessionRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	a, err := s.activities.Create(ctx, req.UserID, req.ActivityType, req.Description, req.StartedAt)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "session opened", "user", a.UserID, "id", a.ID, "type", a.ActivityType)
	return toRecord(a).ToStruct(), nil
}

func (s *GRPCServer) CloseSession(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	req, err := pb.CloseSessionRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.activities.Close(ctx, req.ID, req.EndedAt, req.DurationHours); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "session closed", "id", req.ID, "hours", req.DurationHours)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) FindOpenSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ListSessionsRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	a, err := s.activities.FindOpen(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if a == nil {
		return pb.OptionalSessionToStruct(nil), nil
	}

	r := toRecord(a)
	return pb.OptionalSessionToStruct(&r), nil
}

func (s *GRPCServer) ListSessions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ListSessionsRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	items, err := s.activities.List(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	records := make([]pb.SessionRecord, 0, len(items))
	for _, a := range items {
		records = append(records, toRecord(a))
	}
	return pb.SessionListToStruct(records), nil
}

func (s *GRPCServer) ExportReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ExportReportRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	r, err := s.reports.Export(ctx, req.UserID, req.Year, req.Month)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "report exported", "user", req.UserID, "key", r.Key, "rows", r.Rows)
	return pb.ExportReportResponse{Key: r.Key, URL: r.URL, Rows: r.Rows}.ToStruct(), nil
}

// toStatus maps service errors to gRPC codes. Rejections keep their message;
// anything unexpected is logged and reported as Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, pb.ErrMalformed),
		errors.Is(err, common.ErrEmptyField),
		errors.Is(err, common.ErrUnknownActivityType),
		errors.Is(err, services.ErrNegativeDuration),
		errors.Is(err, services.ErrInvalidPeriod):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrSessionInProgress):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func toRecord(a *models.Activity) pb.SessionRecord {
	return pb.SessionRecord{
		ID:            a.ID,
		UserID:        a.UserID,
		ActivityType:  a.ActivityType,
		Description:   a.Description,
		StartedAt:     a.StartedAt,
		EndedAt:       a.EndedAt,
		DurationHours: a.DurationHours,
		Year:          a.Year,
		Month:         a.Month,
		Day:           a.Day,
	}
}
