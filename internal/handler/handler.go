package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

// MailPublisher 把邮件投递到消息队列，*amqp.Channel 实现了该接口
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	workflow    *workflow.Service
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, svc *workflow.Service, mailCh MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		workflow:    svc,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/roster", h.GetMyRoster)
			r.Get("/shifts", h.GetMyShifts)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.requireAdmin).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.requireAdmin).Patch("/", h.UpdateUser)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.requireAdmin).Post("/", h.CreateShift)
			r.With(h.requireAdmin).Post("/manual", h.ManualScheduleShift)
			r.With(h.requireAdmin).Post("/weekly", h.WeeklyBulkSchedule)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftID)
				r.Route("/change-request", func(r chi.Router) {
					r.With(h.requireStaff).Put("/", h.RequestShiftChange)
					r.With(h.requireAdmin).Post("/approve", h.ApproveRequest)
					r.With(h.requireAdmin).Post("/deny", h.DenyRequest)
				})
				r.Post("/clock-in", h.ClockIn)
				r.Post("/clock-out", h.ClockOut)
			})
		})

		r.With(h.requireAdmin).Post("/rosters", h.ScheduleShift)

		r.Route("/reports", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Use(h.dateRange)
			r.Get("/weekly", h.GetWeeklyReport)
			r.Get("/shifts", h.GetShiftReport)
			r.Get("/roster", h.GetWeeklyRoster)
		})
	})
}
