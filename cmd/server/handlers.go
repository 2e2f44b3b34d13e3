package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/logger"
	"github.com/Skufu/CardioRx/internal/metrics"
	"github.com/Skufu/CardioRx/internal/pipeline"
	"github.com/Skufu/CardioRx/internal/presenter"
)

const (
	channelForm = "form"
	channelAPI  = "api"

	failureMessage = "The prescription could not be computed. Please check the inputs and try again."
)

type handlers struct {
	pipeline *pipeline.Pipeline
	log      PredictionLog
}

func (h *handlers) page(c *gin.Context) {
	c.HTML(http.StatusOK, presenter.PageTemplate, presenter.NewView(form.Defaults(), nil))
}

func (h *handlers) submitForm(c *gin.Context) {
	sub := form.Defaults()
	if err := c.ShouldBindWith(&sub, binding.Form); err != nil {
		metrics.Submissions.WithLabelValues(channelForm, "invalid").Inc()
		view := presenter.NewView(sub, fieldErrors(err))
		if !hasFieldErrors(err) {
			view.Failure = "The form could not be read: " + err.Error()
		}
		c.HTML(http.StatusUnprocessableEntity, presenter.PageTemplate, view)
		return
	}

	rx, err := h.score(c, channelForm, sub)
	view := presenter.NewView(sub, nil)
	if err != nil {
		view.Failure = failureMessage
		c.HTML(statusFor(err), presenter.PageTemplate, view)
		return
	}
	c.HTML(http.StatusOK, presenter.PageTemplate, view.WithPrescription(rx))
}

type prescriptionResponse struct {
	*pipeline.Prescription
	Panels []presenter.Panel `json:"panels"`
}

func (h *handlers) submitJSON(c *gin.Context) {
	sub := form.Defaults()
	if err := c.ShouldBindJSON(&sub); err != nil {
		metrics.Submissions.WithLabelValues(channelAPI, "invalid").Inc()
		if hasFieldErrors(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid record", "fields": fieldErrors(err)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	rx, err := h.score(c, channelAPI, sub)
	if err != nil {
		if errors.Is(err, pipeline.ErrUnseenCategory) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}
	c.JSON(http.StatusOK, prescriptionResponse{Prescription: rx, Panels: presenter.Panels(rx)})
}

// score runs the pipeline, records the outcome and logs it when a
// prediction log is configured.
func (h *handlers) score(c *gin.Context, channel string, sub form.Submission) (*pipeline.Prescription, error) {
	reqID := c.GetString("request_id")
	rx, err := h.pipeline.Run(c.Request.Context(), sub.Record())
	if err != nil {
		metrics.Submissions.WithLabelValues(channel, "error").Inc()
		_ = c.Error(err)
		logger.WithFields(logrus.Fields{
			"request_id": reqID,
			"channel":    channel,
			"error":      err,
		}).Error("Prediction failed")
		return nil, err
	}
	metrics.Submissions.WithLabelValues(channel, "success").Inc()

	logger.WithFields(logrus.Fields{
		"request_id": reqID,
		"channel":    channel,
		"id":         rx.ID,
		"risk":       rx.Risk.Label,
		"target_hr":  rx.HeartRate.Label,
		"duration":   rx.Duration.Label,
		"elapsed_ms": rx.Elapsed.Milliseconds(),
	}).Info("Prescription computed")

	if h.log != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.log.Record(ctx, channel, rx); err != nil {
			metrics.PredictionLogErrors.Inc()
			logger.WithField("error", err).Warn("Failed to log prediction")
		}
	}
	return rx, nil
}

func (h *handlers) catalogue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": form.Sections, "fields": form.Fields})
}

func (h *handlers) schemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"policy":  h.pipeline.Policy(),
		"schemas": h.pipeline.Schemas(),
	})
}

func (h *handlers) recent(c *gin.Context) {
	if h.log == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction log disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.log.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read prediction log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func statusFor(err error) int {
	if errors.Is(err, pipeline.ErrUnseenCategory) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func hasFieldErrors(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// fieldErrors maps validation failures to catalogue field names.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Param()
		if _, ok := form.Lookup(name); !ok {
			name = fe.Field()
		}
		out[name] = form.Describe(name)
	}
	return out
}
