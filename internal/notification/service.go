package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	authrepo "timesheetpro-backend/internal/auth/repository"
	employeerepo "timesheetpro-backend/internal/employee/repository"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	"timesheetpro-backend/pkg/fcm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// Notification is one push attempt kept for the activity feed.
type Notification struct {
	ID         string             `json:"id" gorm:"primaryKey"`
	EmployeeID string             `json:"employee_id" gorm:"index;not null"`
	UploadID   string             `json:"upload_id"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	Status     NotificationStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt  time.Time          `json:"created_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

// Service pushes a notification to the employee and their manager whenever
// an upload lands. It satisfies the ingestion Notifier interface.
type Service struct {
	db        *gorm.DB
	employees employeerepo.EmployeeRepository
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
}

func NewService(db *gorm.DB, employees employeerepo.EmployeeRepository, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *Service {
	return &Service{
		db:        db,
		employees: employees,
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
	}
}

// UploadLanded records the event and fans out pushes in the background so
// the ingestion scan never waits on FCM.
func (s *Service) UploadLanded(upload *uploaddomain.TimesheetUpload) {
	go s.notify(upload)
}

func (s *Service) notify(upload *uploaddomain.TimesheetUpload) {
	employee, err := s.employees.FindByID(upload.EmployeeID)
	if err != nil || employee == nil {
		log.Printf("[Notify] Cannot resolve employee %s for upload %s: %v", upload.EmployeeID, upload.ID, err)
		return
	}

	title := "Timesheet received"
	body := fmt.Sprintf("%s arrived via %s for %s", upload.FileName, upload.Source, employee.FullName)

	recipients := []string{employee.ID}
	if employee.ManagerID != nil && *employee.ManagerID != "" {
		recipients = append(recipients, *employee.ManagerID)
	}

	for _, recipientID := range recipients {
		row := &Notification{
			ID:         uuid.New().String(),
			EmployeeID: recipientID,
			UploadID:   upload.ID,
			Title:      title,
			Body:       body,
			Status:     StatusPending,
			CreatedAt:  time.Now(),
		}
		if err := s.db.Create(row).Error; err != nil {
			log.Printf("[Notify] Failed to record notification for %s: %v", recipientID, err)
			continue
		}

		s.push(row, upload)
	}
}

func (s *Service) push(row *Notification, upload *uploaddomain.TimesheetUpload) {
	if s.fcmClient == nil {
		return
	}

	tokens, err := s.fcmRepo.GetTokensByEmployeeID(row.EmployeeID)
	if err != nil {
		log.Printf("[FCM] Error getting tokens for %s: %v", row.EmployeeID, err)
		s.markStatus(row, StatusFailed)
		return
	}
	if len(tokens) == 0 {
		// Nothing to push to; the feed row is still useful.
		s.markStatus(row, StatusSent)
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, fcm.NotificationData{
		Title: row.Title,
		Body:  row.Body,
		Data: map[string]string{
			"type":      "upload_landed",
			"upload_id": upload.ID,
			"source":    string(upload.Source),
		},
	})
	if err != nil {
		log.Printf("[FCM] Error sending notifications: %v", err)
		s.markStatus(row, StatusFailed)
		return
	}

	log.Printf("[FCM] Sent to %d devices for %s", len(tokenStrings)-len(failedTokens), row.EmployeeID)
	s.markStatus(row, StatusSent)

	// Stale device tokens come back as failures; drop them.
	for _, token := range failedTokens {
		if err := s.fcmRepo.DeleteToken(token); err != nil {
			log.Printf("[FCM] Failed to remove stale token: %v", err)
		}
	}
}

func (s *Service) markStatus(row *Notification, status NotificationStatus) {
	updates := map[string]interface{}{"status": status}
	if status == StatusSent {
		now := time.Now()
		updates["sent_at"] = now
	}
	if err := s.db.Model(&Notification{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		log.Printf("[Notify] Failed to update notification %s: %v", row.ID, err)
	}
}

// Feed lists the most recent notifications for one employee.
func (s *Service) Feed(employeeID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []Notification
	err := s.db.Where("employee_id = ?", employeeID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
