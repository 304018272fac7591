// Package grpc exposes the activity services over the ActivityService gRPC API.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/worklog/internal/logging"
	pb "github.com/dmitrijs2005/worklog/internal/proto"
	"github.com/dmitrijs2005/worklog/internal/server/models"
	"github.com/dmitrijs2005/worklog/internal/server/services"
	"google.golang.org/grpc"
)

// ActivityService is the session surface the handlers call.
type ActivityService interface {
	Create(ctx context.Context, userID, activityType, description string, startedAt time.Time) (*models.Activity, error)
	Close(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error
	FindOpen(ctx context.Context, userID string) (*models.Activity, error)
	List(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
}

// ReportService is the export surface the handlers call.
type ReportService interface {
	Export(ctx context.Context, userID string, year, month int) (services.Report, error)
}

type GRPCServer struct {
	pb.UnimplementedActivityServiceServer
	address    string
	activities ActivityService
	reports    ReportService
	logger     logging.Logger
	secret     []byte
}

func NewGRPCServer(a string, l logging.Logger, as ActivityService, rs ReportService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		activities: as,
		reports:    rs,
		secret:     []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with the interceptor chain and the
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor, s.accessKeyInterceptor))
	pb.RegisterActivityServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
