package auth

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// AccountsRoutes are the paths mounted under the API prefix.
type AccountsRoutes struct {
	Signup             string
	Verify             string
	ResendVerification string
	Login              string
	ForgotPassword     string
	ResetPassword      string
	ChangePassword     string
	MakeAdmin          string
	MakeSuperAdmin     string
	Users              string
	User               string
	Logout             string
}

// AccountsController exposes Accounts as a JSON API.
type AccountsController struct {
	Accounts     *Accounts
	Access       *AccessControl
	Routes       *AccountsRoutes
	Config       Config
	Logger       Logger
	ErrorHandler router.ErrorHandler
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerErrorHandler(h router.ErrorHandler) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if h != nil {
			c.ErrorHandler = h
		}
		return c
	}
}

func NewAccountsController(accounts *Accounts, access *AccessControl, cfg Config, opts ...AccountsControllerOption) *AccountsController {
	if accounts == nil {
		panic("Missing Accounts in accounts controller...")
	}
	if access == nil {
		panic("Missing AccessControl in accounts controller...")
	}

	c := &AccountsController{
		Accounts: accounts,
		Access:   access,
		Config:   cfg,
		Logger:   defLogger{},
		Routes: &AccountsRoutes{
			Signup:             "/signup",
			Verify:             "/verify/:token",
			ResendVerification: "/resend-verification",
			Login:              "/login",
			ForgotPassword:     "/forgot-password",
			ResetPassword:      "/reset-password/:token",
			ChangePassword:     "/change-password/:token",
			MakeAdmin:          "/users/:userId/make-admin",
			MakeSuperAdmin:     "/users/:userId/make-superadmin",
			Users:              "/users",
			User:               "/users/:userId",
			Logout:             "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = NewErrorResponder(c.Logger).Handle
	}

	return c
}

// RegisterAccountRoutes mounts the account API on app. Callers pass the
// group carrying the /api/v1 prefix.
func RegisterAccountRoutes[T any](app router.Router[T], controller *AccountsController) {
	protect := controller.Access.Protect()

	var adminOnly, superOnly, authenticated []router.MiddlewareFunc
	if controller.Config == nil || controller.Config.GetProtectAdminRoutes() {
		authenticated = []router.MiddlewareFunc{protect}
		adminOnly = []router.MiddlewareFunc{protect, controller.Access.RequireAdmin(false)}
		superOnly = []router.MiddlewareFunc{protect, controller.Access.RequireAdmin(true)}
	}

	r := controller.Routes

	app.Post(r.Signup, controller.Signup).SetName("accounts.signup")
	app.Get(r.Verify, controller.VerifyEmail).SetName("accounts.verify")
	app.Post(r.ResendVerification, controller.ResendVerification).SetName("accounts.verify.resend")
	app.Post(r.Login, controller.Login).SetName("accounts.login")
	app.Post(r.ForgotPassword, controller.ForgotPassword).SetName("accounts.password.forgot")
	app.Post(r.ResetPassword, controller.ResetPassword).SetName("accounts.password.reset")
	app.Put(r.ChangePassword, controller.ChangePassword).SetName("accounts.password.change")

	app.Put(r.MakeAdmin, controller.MakeAdmin, adminOnly...).SetName("accounts.promote.admin")
	app.Put(r.MakeSuperAdmin, controller.MakeSuperAdmin, superOnly...).SetName("accounts.promote.superadmin")
	app.Get(r.Users, controller.GetAllUsers, authenticated...).SetName("accounts.users.list")
	app.Get(r.User, controller.GetOneUser, authenticated...).SetName("accounts.users.get")

	app.Post(r.Logout, controller.Logout).SetName("accounts.logout")
}

func (a *AccountsController) Signup(ctx router.Context) error {
	payload := SignupMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}

	res, err := a.Accounts.Signup(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, Envelope{Message: res.Message, Data: res.User})
}

func (a *AccountsController) VerifyEmail(ctx router.Context) error {
	res, err := a.Accounts.VerifyEmail(ctx.Context(), ctx.Param("token", ""))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.Redirect(res.Redirect, http.StatusFound)
}

func (a *AccountsController) ResendVerification(ctx router.Context) error {
	payload := ResendVerificationMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}

	res, err := a.Accounts.ResendVerification(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if res.Status == VerificationAlreadyVerified {
		return ctx.Redirect(res.Redirect, http.StatusFound)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message})
}

func (a *AccountsController) Login(ctx router.Context) error {
	payload := LoginMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}

	res, err := a.Accounts.Login(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message, Data: res.User, Token: res.Token})
}

func (a *AccountsController) ForgotPassword(ctx router.Context) error {
	payload := ForgotPasswordMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}

	msg, err := a.Accounts.ForgotPassword(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: msg})
}

func (a *AccountsController) ResetPassword(ctx router.Context) error {
	payload := ResetPasswordMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}
	payload.Token = ctx.Param("token", "")

	msg, err := a.Accounts.ResetPassword(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: msg})
}

func (a *AccountsController) ChangePassword(ctx router.Context) error {
	payload := ChangePasswordMessage{}
	if err := ctx.Bind(&payload); err != nil {
		return a.ErrorHandler(ctx, NewValidationError("Invalid request body."))
	}
	payload.Token = ctx.Param("token", "")

	msg, err := a.Accounts.ChangePassword(ctx.Context(), payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: msg})
}

func (a *AccountsController) MakeAdmin(ctx router.Context) error {
	res, err := a.Accounts.MakeAdmin(ctx.Context(), ctx.Param("userId", ""))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message, Data: res.User})
}

func (a *AccountsController) MakeSuperAdmin(ctx router.Context) error {
	res, err := a.Accounts.MakeSuperAdmin(ctx.Context(), ctx.Param("userId", ""))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message, Data: res.User})
}

func (a *AccountsController) GetOneUser(ctx router.Context) error {
	res, err := a.Accounts.GetOneUser(ctx.Context(), ctx.Param("userId", ""))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message, Data: res.User})
}

func (a *AccountsController) GetAllUsers(ctx router.Context) error {
	res, err := a.Accounts.GetAllUsers(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: res.Message, Data: res.Users})
}

func (a *AccountsController) Logout(ctx router.Context) error {
	msg, err := a.Accounts.Logout(ctx.Context(), LogoutMessage{
		Authorization: ctx.Header(router.HeaderAuthorization),
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, Envelope{Message: msg})
}
