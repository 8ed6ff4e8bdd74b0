package audit

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const unknown = "unknown"

// Origin is where a login attempt came from.
type Origin struct {
	IP      string
	Country string
	City    string
	Region  string
}

// OriginFromRequest reads the client IP from gin and the geo fields from Cloudflare
// headers when the app sits behind it.
func OriginFromRequest(c *gin.Context) Origin {
	return Origin{
		IP:      c.ClientIP(),
		Country: c.GetHeader("CF-IPCountry"),
		City:    c.GetHeader("CF-IPCity"),
		Region:  c.GetHeader("CF-Region"),
	}
}

// Entry is one login attempt to record.
type Entry struct {
	UserID    string
	Email     string
	CompanyID string
	Status    models.LoginStatus
	Reason    string
	Origin    Origin
}

// Recorder appends LoginLog rows. Write failures never reach the caller: they are
// logged and counted instead.
type Recorder struct {
	db                *gorm.DB
	logger            *zap.Logger
	fallbackCompanyID string
	failures          atomic.Int64
	now               func() time.Time
}

// NewRecorder creates a Recorder. fallbackCompanyID is used when the attempt could not
// be tied to a company.
func NewRecorder(db *gorm.DB, logger *zap.Logger, fallbackCompanyID string) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		db:                db,
		logger:            logger.Named("LoginAudit"),
		fallbackCompanyID: fallbackCompanyID,
		now:               time.Now,
	}
}

// Record writes e.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	row := models.LoginLog{
		Email:     e.Email,
		CompanyID: e.CompanyID,
		Timestamp: r.now(),
		IP:        orUnknown(e.Origin.IP),
		Country:   orUnknown(e.Origin.Country),
		City:      orUnknown(e.Origin.City),
		Region:    orUnknown(e.Origin.Region),
		Status:    e.Status,
	}
	if row.CompanyID == "" {
		row.CompanyID = r.fallbackCompanyID
	}
	if e.UserID != "" {
		uid := e.UserID
		row.UserID = &uid
	}
	if e.Reason != "" {
		reason := e.Reason
		row.Reason = &reason
	}

	// The row must land even if the client has already gone away.
	if err := r.db.WithContext(context.WithoutCancel(ctx)).Create(&row).Error; err != nil {
		n := r.failures.Add(1)
		r.logger.Warn("failed to write login log",
			zap.String("email", e.Email),
			zap.String("status", string(e.Status)),
			zap.Int64("failures_total", n),
			zap.Error(err),
		)
	}
}

// Failures returns how many writes have been dropped since start.
func (r *Recorder) Failures() int64 { return r.failures.Load() }

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}
