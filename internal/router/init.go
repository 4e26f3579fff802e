package router

import (
	"github.com/citygate/csrms/internal/application"
	"github.com/citygate/csrms/internal/container"
	pginfra "github.com/citygate/csrms/internal/infrastructure/postgres"
	handlers "github.com/citygate/csrms/internal/interface/http"
	"github.com/citygate/csrms/internal/router/modules"
)

// InitModules constructs every feature module against the shared singletons
// and registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	citizens := pginfra.NewCitizenRepository(pool)
	requests := pginfra.NewRequestRepository(pool)
	audit := pginfra.NewAuditRepository(pool)
	notifications := pginfra.NewNotificationRepository(pool)
	tx := pginfra.NewTxManager(pool)

	var queue application.EmailQueue
	if pub := container.GetRabbitPub(); pub != nil {
		queue = pub
	}

	authSvc := &application.AuthService{
		Users:       users,
		Citizens:    citizens,
		Audit:       audit,
		Tx:          tx,
		JWT:         container.GetJWT(),
		Queue:       queue,
		Logger:      logger,
		OTPWindow:   cfg.OTPWindow,
		MailEnabled: cfg.MailSendEnabled,
	}
	requestSvc := &application.RequestService{
		Requests:      requests,
		Citizens:      citizens,
		Audit:         audit,
		Notifications: notifications,
		Tx:            tx,
		Queue:         queue,
		Logger:        logger,
		MailEnabled:   cfg.MailSendEnabled,
		GCS:           container.GetGCS(),
		GCSBucket:     cfg.GCSBucket,
		ES:            container.GetES(),
		ESIndex:       cfg.ESRequestsIndex,
	}
	userSvc := &application.UserService{
		Users:    users,
		Citizens: citizens,
		Requests: requests,
		Audit:    audit,
		Tx:       tx,
		Logger:   logger,
	}
	notifSvc := &application.NotificationService{
		Notifications: notifications,
		Logger:        logger,
	}

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), container.GetJWT()))
	r.Add(modules.NewRequestModule(handlers.NewRequestHandler(requestSvc, logger), container.GetJWT()))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), container.GetJWT()))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(notifSvc, logger), container.GetJWT()))
}
