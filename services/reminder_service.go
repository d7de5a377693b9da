package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// StartScheduler registers the daily reminder job. Reminders fire once per
// appointment; there is no retry for failures beyond the log entry.
func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	if _, err := c.AddFunc("0 9 * * *", s.SendDailyReminders); err != nil {
		log.Printf("Failed to schedule reminder job: %v", err)
		return
	}

	c.Start()
	log.Println("Reminder scheduler started")
}

// SendDailyReminders notifies every client with a pending or confirmed
// appointment tomorrow, by SMS when they have a phone number, by email
// otherwise.
func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var appointments []models.Appointment
	err := s.db.
		Where("date = ? AND status IN ?", tomorrow,
			[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed}).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Failed to fetch tomorrow's appointments: %v", err)
		return
	}

	for i := range appointments {
		s.remind(&appointments[i])
	}

	log.Println("Daily reminder processing completed")
}

func (s *ReminderService) remind(apt *models.Appointment) {
	// One reminder per appointment, ever.
	var count int64
	s.db.Model(&models.ReminderLog{}).Where("appointment_id = ?", apt.ID).Count(&count)
	if count > 0 {
		return
	}

	var client models.Client
	if err := s.db.Where("id = ?", apt.ClientID).First(&client).Error; err != nil {
		log.Printf("Reminder skipped, client %s not found: %v", apt.ClientID, err)
		return
	}

	message := fmt.Sprintf("Hello %s, a reminder of your %s appointment tomorrow (%s) at %s. See you soon!",
		client.FirstName, apt.ServiceName, apt.Date, apt.Time)

	channel := models.ReminderChannelEmail
	status := models.ReminderStatusSent
	errorMsg := ""

	if client.Phone != "" {
		channel = models.ReminderChannelSMS
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(client.Phone)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
		params.SetBody(message)

		if _, err := s.client.Api.CreateMessage(params); err != nil {
			log.Printf("Failed to send SMS reminder to %s: %v", client.Phone, err)
			status = models.ReminderStatusFailed
			errorMsg = err.Error()
		}
	} else {
		subject := "Appointment reminder - Ferney Nails"
		body := fmt.Sprintf("<p>%s</p>", message)
		if err := utils.SendEmail(client.Email, subject, body); err != nil {
			log.Printf("Failed to send email reminder to %s: %v", client.Email, err)
			status = models.ReminderStatusFailed
			errorMsg = err.Error()
		}
	}

	reminderLog := models.ReminderLog{
		AppointmentID: apt.ID,
		ClientID:      client.ID,
		Channel:       channel,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		SentAt:        time.Now(),
	}
	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for appointment %s: %v", apt.ID, err)
	}
}
