package middleware

import (
	"fmt"

	pkgError "github.com/AzielCF/az-storage/pkg/error"
	"github.com/AzielCF/az-storage/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery turns a panic into a ResponseData body. Panics carrying a
// GenericError keep its status and code.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = fiber.StatusInternalServerError
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				logrus.WithField("request_id", ctx.Locals("requestid")).
					Errorf("[REST] Panic recovered on %s %s: %v", ctx.Method(), ctx.Path(), err)

				if genericErr, ok := err.(pkgError.GenericError); ok {
					res.Status = genericErr.StatusCode()
					res.Code = genericErr.ErrCode()
					res.Message = genericErr.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
