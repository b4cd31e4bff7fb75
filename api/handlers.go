package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// requestBodyMaxSize bounds how much of a JSON body handlers will read.
const requestBodyMaxSize = 1 << 20

// Config carries session-cookie settings shared by the auth handlers.
type Config struct {
	SessionTTL    time.Duration
	SecureCookies bool
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, users Users, boards Boards, tasks Tasks, auth Authenticator, logger *log.Logger, cfg Config) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	e.POST("/api/auth/register", postRegister(users, auth, logger, cfg))
	e.POST("/api/auth/login", postLogin(users, auth, logger, cfg))
	e.POST("/api/auth/logout", postLogout(cfg))
	e.GET("/api/auth/me", getMe(users, auth, logger))

	e.GET("/api/boards", getBoards(users, boards, auth, logger))
	e.POST("/api/boards", postBoard(users, boards, auth, logger))
	e.PUT("/api/boards/:id", putBoard(users, boards, auth, logger))
	e.DELETE("/api/boards/:id", deleteBoard(users, boards, auth, logger))
	e.GET("/api/boards/tasks", getBoardTasks(users, tasks, auth, logger))

	e.POST("/api/tasks", postTask(users, tasks, auth, logger))
	e.PUT("/api/tasks/:id", putTask(users, tasks, auth, logger))
	e.DELETE("/api/tasks/:id", deleteTask(users, tasks, auth, logger))

	e.GET("/healthz", healthz())
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type userResponse struct {
	User domain.SafeUser `json:"user"`
}

type boardResponse struct {
	Board *domain.Board `json:"board"`
}

type boardsResponse struct {
	Boards []domain.Board `json:"boards"`
}

type taskResponse struct {
	Task *domain.Task `json:"task"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	return dec.Decode(dst)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are logged and collapsed into a 500.
func writeError(c echo.Context, logger *log.Logger, err error) error {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: v.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
	default:
		logger.WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// currentUser resolves the request's session to a live user record. A token
// referencing a deleted user counts as unauthenticated.
func currentUser(c echo.Context, users Users, auth Authenticator) (*domain.User, error) {
	id := auth.Resolve(sessionToken(c))
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	u, err := users.Lookup(c.Request().Context(), id.UserID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func postRegister(users Users, auth Authenticator, logger *log.Logger, cfg Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		u, err := users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
		if err != nil {
			return writeError(c, logger, err)
		}
		token, err := auth.Issue(u.ID)
		if err != nil {
			return writeError(c, logger, err)
		}
		setSessionCookie(c, token, cfg.SessionTTL, cfg.SecureCookies)
		return c.JSON(http.StatusCreated, userResponse{User: u.Safe()})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func postLogin(users Users, auth Authenticator, logger *log.Logger, cfg Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		u, err := users.Authenticate(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeError(c, logger, err)
		}
		token, err := auth.Issue(u.ID)
		if err != nil {
			return writeError(c, logger, err)
		}
		setSessionCookie(c, token, cfg.SessionTTL, cfg.SecureCookies)
		return c.JSON(http.StatusOK, userResponse{User: u.Safe()})
	}
}

// postLogout clears the session cookie. There is no server-side revocation;
// the token simply ages out.
func postLogout(cfg Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSessionCookie(c, cfg.SecureCookies)
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func getMe(users Users, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusOK, userResponse{User: u.Safe()})
	}
}

func getBoards(users Users, boards Boards, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newListRequestMetrics(logger, "/api/boards")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		u, authErr := currentUser(c, users, auth)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = writeError(c, logger, authErr)
			return err
		}

		loadStart := time.Now()
		list, loadErr := boards.List(c.Request().Context(), u)
		metrics.ObserveLoad(time.Since(loadStart))
		if loadErr != nil {
			metrics.SetErrorStage("storage")
			err = writeError(c, logger, loadErr)
			return err
		}
		metrics.SetItems(len(list))
		err = c.JSON(http.StatusOK, boardsResponse{Boards: list})
		return err
	}
}

type createBoardRequest struct {
	Name string `json:"name"`
}

func postBoard(users Users, boards Boards, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		var req createBoardRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		b, err := boards.Create(c.Request().Context(), u, req.Name)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, boardResponse{Board: b})
	}
}

func putBoard(users Users, boards Boards, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		var req createBoardRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		b, err := boards.Rename(c.Request().Context(), u, c.Param("id"), req.Name)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusOK, boardResponse{Board: b})
	}
}

func deleteBoard(users Users, boards Boards, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		if err := boards.Delete(c.Request().Context(), u, c.Param("id")); err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func getBoardTasks(users Users, tasks Tasks, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newListRequestMetrics(logger, "/api/boards/tasks")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		u, authErr := currentUser(c, users, auth)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = writeError(c, logger, authErr)
			return err
		}

		boardID := c.QueryParam("boardId")
		if boardID == "" {
			metrics.SetErrorStage("missing_board_id")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "boardId is required"})
			return err
		}

		loadStart := time.Now()
		list, loadErr := tasks.List(c.Request().Context(), u, boardID)
		metrics.ObserveLoad(time.Since(loadStart))
		if loadErr != nil {
			metrics.SetErrorStage("storage")
			err = writeError(c, logger, loadErr)
			return err
		}
		metrics.SetItems(len(list))
		err = c.JSON(http.StatusOK, tasksResponse{Tasks: list})
		return err
	}
}

type createTaskRequest struct {
	BoardID     string  `json:"boardId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
}

func postTask(users Users, tasks Tasks, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if req.BoardID == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "boardId is required"})
		}
		t, err := tasks.Create(c.Request().Context(), u, req.BoardID, req.Title, req.Description, req.DueDate)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, taskResponse{Task: t})
	}
}

func putTask(users Users, tasks Tasks, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		var upd domain.TaskUpdate
		if err := decodeBody(c, &upd); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		t, err := tasks.Update(c.Request().Context(), u, c.Param("id"), upd)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusOK, taskResponse{Task: t})
	}
}

func deleteTask(users Users, tasks Tasks, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := currentUser(c, users, auth)
		if err != nil {
			return writeError(c, logger, err)
		}
		if err := tasks.Delete(c.Request().Context(), u, c.Param("id")); err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}
