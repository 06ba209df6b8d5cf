package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// GenerateShiftInstances 把指定模板在一段时间内展开成具体班次。
// 同一个经理同时只允许一次生成，用 redis 的 SetNX 做互斥。
func (h *Handler) GenerateShiftInstances(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		TemplateIDs      []int64 `json:"templateIDs" validate:"required,min=1"`
		GenerateFromDate *string `json:"generateFromDate" validate:"omitempty,datetime=2006-01-02"`
		GenerateDays     *int    `json:"generateDays" validate:"omitempty,gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	genReq := &domain.GenerationRequest{
		ManagerID:   myInfo.ID,
		TemplateIDs: req.TemplateIDs,
	}

	if req.GenerateFromDate != nil {
		fromDate, err := time.ParseInLocation(time.DateOnly, *req.GenerateFromDate, h.location)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		genReq.GenerateFromDate = &fromDate
	}

	// 缺省生成天数由配置决定，显式传 0 表示空跑
	if req.GenerateDays != nil {
		genReq.GenerateDays = *req.GenerateDays
	} else {
		genReq.GenerateDays = h.config.Generation.DefaultDays
	}

	// 获取生成锁
	lockKey := fmt.Sprintf("generation_lock_%d", myInfo.ID)

	lockCtx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	locked, err := h.redisClient.SetNX(lockCtx, lockKey, 1, time.Duration(h.config.Generation.LockExpiration)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "上一次生成尚未结束，请稍后再试")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
		defer cancel()
		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			slog.Error("释放生成锁失败", "key", lockKey, "error", err)
		}
	}()

	result, err := h.generator.Generate(r.Context(), genReq)
	if err != nil {
		// 基础设施故障导致生成中断，把已经提交的部分一并返回
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusInternalServerError, Response{
			Success: false,
			Message: "排班生成中断",
			Data:    result,
		})
		return
	}

	// 生成报告邮件只是尽力而为，发送失败不影响本次生成的结果
	h.publishGenerationReport(myInfo, result)

	h.successResponse(w, r, "排班生成完成", result)
}

func (h *Handler) publishGenerationReport(myInfo *domain.User, result *domain.GenerationResult) {
	mailMessage := domain.MailMessage{
		Type: "generation_report",
		To:   myInfo.Email,
		Data: domain.GenerationReportMailData{
			FullName:           myInfo.FullName,
			GeneratedFrom:      result.GeneratedFrom.Format(time.DateOnly),
			GeneratedTo:        result.GeneratedTo.Format(time.DateOnly),
			ShiftsCreatedCount: result.ShiftsCreatedCount,
			ShiftsSkippedCount: result.ShiftsSkippedCount,
			SkipReasons:        result.SkipReasons,
			Errors:             result.Errors,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		slog.Error("序列化生成报告失败", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Error("发送生成报告失败", "to", myInfo.Email, "error", err)
	}
}

func (h *Handler) GetShiftInstances(w http.ResponseWriter, r *http.Request) {
	filter := &domain.ShiftInstanceFilter{}
	query := r.URL.Query()

	if v := query.Get("templateID"); v != "" {
		templateID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "模板ID无效")
			return
		}
		filter.TemplateID = &templateID
	}
	if v := query.Get("locationID"); v != "" {
		locationID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "驻点ID无效")
			return
		}
		filter.LocationID = &locationID
	}
	if v := query.Get("status"); v != "" {
		status := domain.ShiftStatus(v)
		filter.Status = &status
	}
	if v := query.Get("from"); v != "" {
		from, err := time.ParseInLocation(time.DateOnly, v, h.location)
		if err != nil {
			h.errorResponse(w, r, "开始日期无效")
			return
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.ParseInLocation(time.DateOnly, v, h.location)
		if err != nil {
			h.errorResponse(w, r, "结束日期无效")
			return
		}
		filter.To = &to
	}

	instances, err := h.repository.ListShiftInstances(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", instances)
}
