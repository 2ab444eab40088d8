package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	shiftService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/shift"
	timesheetService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/timesheet"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	timesheetRepo := postgresql.NewTimesheetRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	shiftCalendar := postgresql.NewShiftCalendar(db)
	holidayCalendar := postgresql.NewHolidayCalendar(db)
	txRunner := postgresql.NewTxRunner(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	clock := clockwork.NewRealClock()
	resolver := timesheetService.NewResolver(shiftCalendar, holidayCalendar)
	computer := timesheetService.NewComputer(holidayCalendar)
	timesheetSvc := timesheetService.NewTimesheetService(
		txRunner,
		timesheetRepo,
		employeeRepo,
		branchRepo,
		resolver,
		computer,
		clock,
		emailService,
	)
	scheduleSvc := shiftService.NewScheduleService(shiftCalendar, clock)

	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)

	router := appHTTP.NewRouter(JWTService, timesheetHandler, scheduleHandler)

	scheduler := cron.NewScheduler()
	timesheetJobs := cron.NewTimesheetJobs(timesheetRepo, employeeRepo, emailService, clock)
	timesheetJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	go func() {
		if err := http.ListenAndServe(port, router); err != nil {
			fmt.Println("Server error:", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
}
