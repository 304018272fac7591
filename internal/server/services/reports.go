package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/worklog/internal/server/config"
	"github.com/dmitrijs2005/worklog/internal/server/models"
	"github.com/dmitrijs2005/worklog/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ReportHeader is the first CSV line; it mirrors the atividades columns.
var ReportHeader = []string{"id", "tipo_atividade", "descricao", "inicio", "fim", "user_id", "ano", "mes", "dia", "horas_trabalhadas"}

const reportTimeLayout = "2006-01-02 15:04:05"

// Report points at an uploaded monthly report.
type Report struct {
	Key  string
	URL  string
	Rows int
}

// ReportService renders a user's month as CSV, stores it in S3 and hands
// out a presigned download link.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	loc         *time.Location
}

// NewReportService constructs a ReportService using repositories and server config.
func NewReportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, loc *time.Location) *ReportService {
	return &ReportService{db: db, repomanager: m, config: cfg, loc: loc}
}

// ReportKey names the object a report is stored under.
func ReportKey(userID string, year, month int) string {
	return fmt.Sprintf("relatorios/%s/%04d-%02d/%v.csv", url.PathEscape(userID), year, month, uuid.New())
}

func (s *ReportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export builds the CSV for userID's sessions in year/month, uploads it and
// returns a link valid for config.ReportURLValidity.
func (s *ReportService) Export(ctx context.Context, userID string, year, month int) (Report, error) {
	if strings.TrimSpace(userID) == "" || year < 1 || month < 1 || month > 12 {
		return Report{}, fmt.Errorf("%w: %q %d-%d", ErrInvalidPeriod, userID, year, month)
	}

	rows, err := s.repomanager.Activities(s.db).ListMonth(ctx, userID, year, month)
	if err != nil {
		return Report{}, fmt.Errorf("error reading sessions: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, s.loc); err != nil {
		return Report{}, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return Report{}, err
	}

	bucket := s.config.S3Bucket
	key := ReportKey(userID, year, month)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv; charset=utf-8"),
	}); err != nil {
		return Report{}, fmt.Errorf("error uploading report: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ReportURLValidity))
	if err != nil {
		return Report{}, fmt.Errorf("error presigning report: %w", err)
	}

	return Report{Key: key, URL: req.URL, Rows: len(rows)}, nil
}

// WriteCSV writes rows under ReportHeader. Instants are rendered in loc;
// an open session leaves fim and horas_trabalhadas empty.
func WriteCSV(w io.Writer, rows []*models.Activity, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ReportHeader); err != nil {
		return err
	}

	for _, a := range rows {
		end, hours := "", ""
		if a.EndedAt != nil {
			end = a.EndedAt.In(loc).Format(reportTimeLayout)
		}
		if a.DurationHours != nil {
			hours = strconv.FormatFloat(*a.DurationHours, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			strconv.FormatInt(a.ID, 10),
			a.ActivityType,
			a.Description,
			a.StartedAt.In(loc).Format(reportTimeLayout),
			end,
			a.UserID,
			strconv.Itoa(a.Year),
			strconv.Itoa(a.Month),
			strconv.Itoa(a.Day),
			hours,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
