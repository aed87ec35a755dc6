package utils

import (
	"fmt"
	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
	"net/smtp"
	"strings"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: BrightPath Academy <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	// Debug Logs
	fmt.Printf("--- Sending Email ---\nTo: %v\nSubject: %s\nFrom: %s\n", to, subject, from)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	fmt.Println("--- Email Sent Successfully ---")
	return nil
}

// HTML Wrapper (Professional Look)
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.content h2 { color: #1A237E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #43A047; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #43A047; margin: 20px 0; }
			.stat-badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; color: white; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>BRIGHTPATH ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 BrightPath Academy. All rights reserved.<br>
				Keep learning, one day at a time.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to BrightPath Academy"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>BrightPath Academy</strong>! We are thrilled to have you onboard.</p>
		<p>Your account has been successfully created. You can now browse our courses and start your learning journey.</p>
		<p>If you have any questions, feel free to reach out to our support team.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Enrollment Confirmation
func SendEnrollmentEmail(user models.User, course courseModels.Course) {
	subject := "Enrollment Confirmed: " + course.Title
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in <strong>%s</strong>.</p>
		<p>You earned your enrollment bonus points. Complete lessons every day to build your streak and stay on pace.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open your dashboard to see today's lessons.
		</div>
	`, user.Name, course.Title)

	fmt.Println("Triggering Enrollment Email for:", user.Email)
	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// 3. Course Completion
func SendCourseCompletionEmail(user models.User, course courseModels.Course, totalPoints int) {
	subject := "Course Completed: " + course.Title
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Total points earned:</strong> %d
		</div>
		<p>You can now request your certificate of completion from your dashboard.</p>
		<a href="#" class="btn">Request Certificate</a>
	`, user.Name, course.Title, totalPoints)

	go SendEmail([]string{user.Email}, subject, getEmailTemplate("Course Completed!", body))
}

// 4. Quiz Passed
func SendQuizPassedEmail(email, name, lessonTitle string, percentage float64, points int) {
	subject := "Quiz Passed: " + lessonTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Well done! You passed the quiz <strong>%s</strong> with a score of <strong>%.0f%%</strong>.</p>
		<div class="info-box">
			You earned <strong>%d points</strong> for this quiz.
		</div>
	`, name, lessonTitle, percentage, points)

	go SendEmail([]string{email}, subject, getEmailTemplate("Quiz Passed", body))
}

// 5. Falling Behind Reminder
func SendPacingReminderEmail(email, name, courseName string, deviation float64) {
	subject := "Stay on Track: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are currently <strong>%.0f%%</strong> behind the expected pace for <strong>%s</strong>.</p>
		<div class="info-box">
			A lesson a day keeps you on track. Pick up where you left off and your streak will thank you.
		</div>
		<a href="#" class="btn">Continue Learning</a>
	`, name, -deviation, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("You're Falling Behind", body))
}

// 6. Login Notification
func SendLoginNotificationEmail(email, name, ip, device, timeStr string) {
	subject := "New Login Alert"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We noticed a new login to your account.</p>
		<div class="info-box" style="background: #FFFFFF; border: 1px solid #E0E0E0; border-left: 4px solid #43A047;">
			<ul style="list-style: none; padding: 0; margin: 0;">
				<li style="margin-bottom: 8px;"><strong>Time:</strong> %s</li>
				<li style="margin-bottom: 8px;"><strong>IP Address:</strong> %s</li>
				<li><strong>Device:</strong> %s</li>
			</ul>
		</div>
		<p>If this was you, you can safely ignore this email.</p>
		<p style="color: #DC3545; font-weight: bold;">If you did not authorize this login, please contact support immediately.</p>
	`, name, timeStr, ip, device)

	go SendEmail([]string{email}, subject, getEmailTemplate("New Login Detected", body))
}
