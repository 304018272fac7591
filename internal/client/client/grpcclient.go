package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/common"
	pb "github.com/dmitrijs2005/worklog/internal/proto"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// DefaultTimeout bounds each call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// GRPCClient implements Client over the ActivityService gRPC API.
type GRPCClient struct {
	endpointURL string
	accessKey   string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.ActivityServiceClient
}

var _ Client = (*GRPCClient)(nil)

func withAccessKey(ctx context.Context, key string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessKeyHeaderName, key)
	if len(md.Get(common.RequestIDHeaderName)) == 0 {
		md.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessKeyInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx = withAccessKey(ctx, c.accessKey)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a client for endpointURL. The connection is
// established lazily on the first call. A non-positive timeout selects
// DefaultTimeout.
func NewGRPCClient(endpointURL, accessKey string, timeout time.Duration) (*GRPCClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, accessKey: accessKey, timeout: timeout}

	conn, err := grpc.NewClient(c.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessKeyInterceptor),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = pb.NewActivityServiceClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.GetValue() != pb.PingOK {
		return fmt.Errorf("%w: ping status %q", common.ErrBackendUnavailable, resp.GetValue())
	}
	return nil
}

func (c *GRPCClient) CreateSession(ctx context.Context, s models.NewSession) (models.ActivitySession, error) {
	req := pb.CreateSessionRequest{
		UserID:       s.UserID,
		ActivityType: string(s.ActivityType),
		Description:  s.Description,
		StartedAt:    s.StartedAt,
	}

	resp, err := c.client.CreateSession(ctx, req.ToStruct())
	if err != nil {
		return models.ActivitySession{}, c.mapError(err)
	}

	rec, err := pb.SessionRecordFromStruct(resp)
	if err != nil {
		return models.ActivitySession{}, fmt.Errorf("%w: %v", common.ErrBackendRejected, err)
	}
	return toModel(rec), nil
}

func (c *GRPCClient) CloseSession(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error {
	req := pb.CloseSessionRequest{ID: id, EndedAt: endedAt, DurationHours: durationHours}

	if _, err := c.client.CloseSession(ctx, req.ToStruct()); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) FindOpenSession(ctx context.Context, userID string) (*models.ActivitySession, error) {
	resp, err := c.client.FindOpenSession(ctx, pb.ListSessionsRequest{UserID: userID}.ToStruct())
	if err != nil {
		return nil, c.mapError(err)
	}

	rec, err := pb.OptionalSessionFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBackendRejected, err)
	}
	if rec == nil {
		return nil, nil
	}
	s := toModel(*rec)
	return &s, nil
}

func (c *GRPCClient) ListSessions(ctx context.Context, userID string, limit int) ([]models.ActivitySession, error) {
	resp, err := c.client.ListSessions(ctx, pb.ListSessionsRequest{UserID: userID, Limit: limit}.ToStruct())
	if err != nil {
		return nil, c.mapError(err)
	}

	recs, err := pb.SessionListFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBackendRejected, err)
	}

	out := make([]models.ActivitySession, 0, len(recs))
	for _, r := range recs {
		out = append(out, toModel(r))
	}
	return out, nil
}

func (c *GRPCClient) ExportReport(ctx context.Context, userID string, year, month int) (Report, error) {
	req := pb.ExportReportRequest{UserID: userID, Year: year, Month: month}

	resp, err := c.client.ExportReport(ctx, req.ToStruct())
	if err != nil {
		return Report{}, c.mapError(err)
	}

	r, err := pb.ExportReportResponseFromStruct(resp)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", common.ErrBackendRejected, err)
	}
	return Report{Key: r.Key, URL: r.URL, Rows: r.Rows}, nil
}

// mapError folds a gRPC status into the backend error taxonomy, keeping the
// server message for display.
func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.AlreadyExists, codes.OutOfRange:
		return fmt.Errorf("%w: %s", common.ErrBackendRejected, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", common.ErrBackendUnavailable, st.Code(), st.Message())
	}
}

func toModel(r pb.SessionRecord) models.ActivitySession {
	return models.ActivitySession{
		ID:            r.ID,
		UserID:        r.UserID,
		ActivityType:  models.ActivityType(r.ActivityType),
		Description:   r.Description,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
		DurationHours: r.DurationHours,
		Year:          r.Year,
		Month:         r.Month,
		Day:           r.Day,
	}
}
