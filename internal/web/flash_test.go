package web_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storedir/internal/models"
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_AddThenPop(t *testing.T) {
	flash := web.NewFlash(session.New())
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		if err := flash.Add(c, web.FlashSuccess, "Saved!"); err != nil {
			return err
		}
		if err := flash.Add(c, web.FlashError, "One", "Two"); err != nil {
			return err
		}
		return c.Redirect("/get")
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		flashes, err := flash.Pop(c)
		if err != nil {
			return err
		}
		return c.JSON(flashes)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil), -1)
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	cookie = strings.SplitN(cookie, ";", 2)[0]

	get := func() string {
		req := httptest.NewRequest(http.MethodGet, "/get", nil)
		req.Header.Set("Cookie", cookie)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var body bytes.Buffer
		_, _ = body.ReadFrom(resp.Body)
		return body.String()
	}

	assert.JSONEq(t, `{"success":["Saved!"],"error":["One","Two"]}`, get())
	assert.JSONEq(t, `{}`, get(), "flashes are shown once")
}

func TestRequestContext(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if web.CurrentUser(c) != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		web.SetUser(c, &models.User{ID: "u1"})
		return c.SendString(web.FromCtx(c).User.ID)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlash_CorruptPayload(t *testing.T) {
	store := session.New()
	flash := web.NewFlash(store)
	app := fiber.New()
	app.Get("/corrupt", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set("flashes", "{not json")
		return sess.Save()
	})
	app.Get("/pop", func(c *fiber.Ctx) error {
		flashes, err := flash.Pop(c)
		if !errors.Is(err, web.ErrCorruptFlashes) {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprint(err))
		}
		return c.JSON(flashes)
	})
	app.Get("/add", func(c *fiber.Ctx) error {
		err := flash.Add(c, web.FlashInfo, "Fresh")
		if !errors.Is(err, web.ErrCorruptFlashes) {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprint(err))
		}
		flashes, err := flash.Pop(c)
		if err != nil {
			return err
		}
		return c.JSON(flashes)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/corrupt", nil), -1)
	require.NoError(t, err)
	cookie := strings.SplitN(resp.Header.Get("Set-Cookie"), ";", 2)[0]
	require.NotEmpty(t, cookie)

	get := func(path string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Cookie", cookie)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var body bytes.Buffer
		_, _ = body.ReadFrom(resp.Body)
		return resp.StatusCode, body.String()
	}

	status, body := get("/add")
	assert.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{"info":["Fresh"]}`, body, "corrupt payload is replaced")

	_, err = app.Test(withCookie(httptest.NewRequest(http.MethodGet, "/corrupt", nil), cookie), -1)
	require.NoError(t, err)
	status, body = get("/pop")
	assert.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{}`, body)
}

func withCookie(req *http.Request, cookie string) *http.Request {
	req.Header.Set("Cookie", cookie)
	return req
}
