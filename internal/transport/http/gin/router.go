package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/eventra/eventra/internal/domain"
	redisrepo "github.com/eventra/eventra/internal/repository/redis"
	"github.com/eventra/eventra/internal/service"
	"github.com/eventra/eventra/internal/service/auth"
	"github.com/eventra/eventra/internal/service/events"
)

const sessionCookie = "token"

type Options struct {
	UploadDir    string
	CORSOrigin   string
	LoginLimiter *redisrepo.SlidingWindowLimiter
}

func NewRouter(
	svcs *service.Services,
	logger *slog.Logger,
	opts Options,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(opts.CORSOrigin))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, "test ok")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// uploaded images
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// auth
	r.POST("/register", handleRegister(svcs))
	r.POST("/login", handleLogin(svcs, opts.LoginLimiter))
	r.GET("/profile", handleProfile(svcs))
	r.POST("/logout", handleLogout(svcs))

	// events
	r.POST("/createEvent", handleCreateEvent(svcs, opts.UploadDir))
	r.GET("/createEvent", handleListUpcoming(svcs))
	r.GET("/events", handleListAll(svcs))
	r.GET("/event/:id", handleGetEvent(svcs))
	r.GET("/event/:id/ordersummary", handleGetEvent(svcs))
	r.GET("/event/:id/ordersummary/paymentsummary", handleGetEvent(svcs))
	r.POST("/event/:eventId", handleLikeEvent(svcs))
	r.DELETE("/event/:id", handleDeleteEvent(svcs))

	// tickets; the two GET routes (/tickets/:id and /tickets/user/:userId)
	// cannot coexist in gin's tree, so one catch-all fans out by path shape.
	r.POST("/tickets", handleCreateTicket(svcs))
	r.GET("/tickets/*rest", handleGetTickets(svcs))
	r.DELETE("/tickets/:id", handleDeleteTicket(svcs))

	return r
}

// --- Auth handlers ---

// @Summary  Register a user
// @Param    req body RegisterRequest true "payload"
// @Success  201 {object} UserResponse
// @Failure  400 {object} ErrorResponse "email already exists"
// @Router   /register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		u, err := svcs.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, userResponse(u))
	}
}

// @Summary  Log in and receive a session cookie
// @Param    req body LoginRequest true "payload"
// @Success  200 {object} UserResponse
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /login [post]
func handleLogin(svcs *service.Services, limiter *redisrepo.SlidingWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if limiter != nil {
			ok, _, _, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
			if err != nil {
				respondErr(c, err)
				return
			}
			if !ok {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
				return
			}
		}

		u, token, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
		c.JSON(http.StatusOK, userResponse(u))
	}
}

// @Summary  Current user from the session cookie
// @Success  200 {object} UserResponse "null when anonymous"
// @Router   /profile [get]
func handleProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)

		u, err := svcs.Auth.Profile(c.Request.Context(), token)
		if err != nil {
			respondErr(c, err)
			return
		}
		if u == nil {
			c.JSON(http.StatusOK, nil)
			return
		}

		c.JSON(http.StatusOK, userResponse(u))
	}
}

// @Summary  Log out
// @Success  200 {boolean} bool
// @Router   /logout [post]
func handleLogout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)

		if err := svcs.Auth.Logout(c.Request.Context(), token); err != nil {
			respondErr(c, err)
			return
		}

		c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, true)
	}
}

// --- Event handlers ---

// @Summary  Create an event
// @Accept   multipart/form-data
// @Param    title     formData  string  true   "Event title"
// @Param    eventDate formData  string  true   "Calendar day, YYYY-MM-DD"
// @Param    image     formData  file    false  "Event image"
// @Success  201 {object} domain.Event
// @Failure  400 {object} ErrorResponse
// @Failure  500 {object} ErrorResponse
// @Router   /createEvent [post]
func handleCreateEvent(svcs *service.Services, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := events.CreateInput{
			Owner:        c.PostForm("owner"),
			Title:        c.PostForm("title"),
			Type:         c.PostForm("type"),
			Description:  c.PostForm("description"),
			OrganizedBy:  c.PostForm("organizedBy"),
			EventDate:    c.PostForm("eventDate"),
			EventTime:    c.PostForm("eventTime"),
			Location:     c.PostForm("location"),
			Participants: c.PostForm("Participants"),
			Count:        c.PostForm("Count"),
			Income:       c.PostForm("Income"),
			TicketPrice:  c.PostForm("ticketPrice"),
			Quantity:     c.PostForm("Quantity"),
			Likes:        c.PostForm("likes"),
		}

		if file, err := c.FormFile("image"); err == nil && uploadDir != "" {
			name := filepath.Base(file.Filename)
			if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, name)); err != nil {
				respondErr(c, err)
				return
			}
			in.ImagePath = "uploads/" + name
		}

		e, err := svcs.Events.Create(c.Request.Context(), in)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  List events from today onward, ascending by date
// @Success  200 {array} domain.Event
// @Router   /createEvent [get]
func handleListUpcoming(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		evs, err := svcs.Events.ListUpcoming(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, evs, "public, max-age=15", true)
	}
}

// @Summary  List all events, ascending by date
// @Success  200 {array} domain.Event
// @Router   /events [get]
func handleListAll(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		evs, err := svcs.Events.ListAll(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, evs, "public, max-age=15", true)
	}
}

// @Summary  Get one event
// @Param    id  path  string  true  "Event ID"
// @Success  200 {object} domain.Event
// @Failure  404 {object} ErrorResponse
// @Router   /event/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Events.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  Like an event
// @Param    eventId  path  string  true  "Event ID"
// @Success  200 {object} domain.Event
// @Failure  404 {object} ErrorResponse
// @Router   /event/{eventId} [post]
func handleLikeEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "eventId")
		if !ok {
			return
		}
		e, err := svcs.Events.Like(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// @Summary  Delete an event and its tickets
// @Param    id  path  string  true  "Event ID"
// @Success  200 {object} DeleteEventResponse
// @Failure  404 {object} ErrorResponse
// @Router   /event/{id} [delete]
func handleDeleteEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Events.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DeleteEventResponse{Message: "Event deleted"})
	}
}

// --- Ticket handlers ---

// @Summary  Create a ticket
// @Param    req body object true "arbitrary ticket payload with eventid/userid"
// @Success  201 {object} TicketResponse
// @Router   /tickets [post]
func handleCreateTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tickets.Create(c.Request.Context(), body)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, TicketResponse{Ticket: *t})
	}
}

// handleGetTickets serves both GET /tickets/:id (all tickets; the id segment
// has never been used) and GET /tickets/user/:userId.
func handleGetTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		rest := strings.Trim(c.Param("rest"), "/")

		if userID, ok := strings.CutPrefix(rest, "user/"); ok {
			ts, err := svcs.Tickets.ListByUser(c.Request.Context(), userID)
			if err != nil {
				respondErr(c, err)
				return
			}
			if ts == nil {
				ts = []domain.Ticket{}
			}
			c.JSON(http.StatusOK, ts)
			return
		}

		ts, err := svcs.Tickets.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ts)
	}
}

// @Summary  Delete a ticket
// @Param    id  path  string  true  "Ticket ID"
// @Success  204
// @Router   /tickets/{id} [delete]
func handleDeleteTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Tickets.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// events service
	case errors.Is(err, events.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Event not found"})
		return
	case errors.Is(err, events.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// auth service
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Email already exists"})
		return
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid password"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
