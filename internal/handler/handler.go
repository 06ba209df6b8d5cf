package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/anxun-security/guard-roster/backend/internal/config"
	"github.com/anxun-security/guard-roster/backend/internal/domain"
	"github.com/anxun-security/guard-roster/backend/internal/generator"
	"github.com/anxun-security/guard-roster/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	generator   *generator.Generator
	location    *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 业务时区是生成引擎的一部分：今天从哪一刻开始由它决定
	loc, err := time.LoadLocation(cfg.Generation.Timezone)
	if err != nil {
		return nil, err
	}

	gen := generator.New(repo, repo, generator.NewSystemClock(loc), cfg.Generation.MaxDays)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		generator:   gen,
		location:    loc,

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

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleManager})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateLocation)
			r.Get("/", h.GetAllLocations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.locationInfo)
				r.Get("/", h.GetLocation)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateLocation)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteLocation)
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/", h.CreateShiftTemplate)
			r.Get("/", h.GetMyShiftTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Delete("/", h.DeleteShiftTemplate)
			})
		})

		// 例外数据：节假日、驻点关闭、请假/取消记录
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.GetAllHolidays)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateHoliday)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{id}", h.DeleteHoliday)
		})
		r.Route("/location-closures", func(r chi.Router) {
			r.Get("/", h.GetAllLocationClosures)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/", h.CreateLocationClosure)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Delete("/{id}", h.DeleteLocationClosure)
		})
		r.Route("/shift-issues", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetShiftIssues)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/", h.CreateShiftIssue)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Delete("/{id}", h.DeleteShiftIssue)
		})

		r.Route("/shift-instances", func(r chi.Router) {
			r.Get("/", h.GetShiftInstances)
			r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/generate", h.GenerateShiftInstances)
		})
	})
}
