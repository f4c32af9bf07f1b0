package postback

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"signalbot/config"
	"signalbot/pkg/logger"
	"signalbot/service"
)

// Server receives partner postbacks over HTTP. Brokers retry on non-2xx,
// so malformed-but-authenticated requests are answered 200 with an ERR
// body instead of a 4xx; only a bad secret is rejected outright.
type Server struct {
	App *iris.Application

	cfg *config.Config
	svc service.IServiceManager
	log logger.ILogger
}

func New(cfg *config.Config, svc service.IServiceManager, log logger.ILogger) *Server {
	s := &Server{
		App: iris.New(),
		cfg: cfg,
		svc: svc,
		log: log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.App.Get("/", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"status": "ok", "service": "postbacks"})
	})

	// Partners differ on verb and param placement, so every endpoint
	// accepts both verbs and merges query, form and JSON body.
	s.App.HandleMany("GET POST", "/postback/registration", s.secured(s.handleRegistration))
	s.App.HandleMany("GET POST", "/postback/first_deposit", s.secured(s.handleDeposit))
	s.App.HandleMany("GET POST", "/postback/redeposit", s.secured(s.handleDeposit))
	s.App.HandleMany("GET POST", "/postback/withdraw", s.secured(s.handleWithdraw))
}

func (s *Server) Run() error {
	return s.App.Listen(fmt.Sprintf(":%d", s.cfg.AppPort))
}

func (s *Server) secured(h iris.Handler) iris.Handler {
	return func(ctx iris.Context) {
		if s.cfg.PostbackSecret != "" {
			// A match from either the query param or the header counts.
			if ctx.URLParam("secret") != s.cfg.PostbackSecret &&
				ctx.GetHeader("X-Postback-Secret") != s.cfg.PostbackSecret {
				s.log.Warning("postback rejected: bad secret",
					logger.String("path", ctx.Path()), logger.String("remote", ctx.RemoteAddr()))
				ctx.StatusCode(iris.StatusForbidden)
				_, _ = ctx.WriteString("forbidden")
				return
			}
		}
		h(ctx)
	}
}

// readParams flattens the request into a single param map. Precedence is
// query over form over JSON body, matching what partner panels actually
// send when they mix a templated URL with a POST body.
func readParams(ctx iris.Context) map[string]string {
	out := make(map[string]string)

	if strings.Contains(ctx.GetHeader("Content-Type"), "application/json") {
		var body map[string]any
		dec := json.NewDecoder(ctx.Request().Body)
		// Telegram ids overflow float64 precision; keep numbers verbatim.
		dec.UseNumber()
		if err := dec.Decode(&body); err == nil {
			for k, v := range body {
				switch t := v.(type) {
				case string:
					out[k] = t
				case json.Number:
					out[k] = t.String()
				default:
					out[k] = fmt.Sprint(t)
				}
			}
		}
	}
	for k, vs := range ctx.FormValues() {
		if len(vs) > 0 && vs[0] != "" {
			out[k] = vs[0]
		}
	}
	for k, vs := range ctx.Request().URL.Query() {
		if len(vs) > 0 && vs[0] != "" {
			out[k] = vs[0]
		}
	}
	return out
}

// reject answers a malformed request with 200 and an ERR marker naming
// the first bad field, so the partner's retry queue drops it.
func (s *Server) reject(ctx iris.Context, field string) {
	s.log.Warning("postback rejected: bad param",
		logger.String("path", ctx.Path()), logger.String("field", field))
	_, _ = ctx.WriteString("ERR: " + field)
}

func (s *Server) fail(ctx iris.Context, err error) {
	s.log.Error("postback processing failed",
		logger.String("path", ctx.Path()), logger.Error(err))
	ctx.StatusCode(iris.StatusInternalServerError)
	_, _ = ctx.WriteString("ERR: internal")
}

func parseClickID(p map[string]string) (int64, bool) {
	id, err := strconv.ParseInt(p["click_id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseAmount(p map[string]string, field string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(p[field])
	if err != nil || amount.Sign() < 0 {
		return decimal.Decimal{}, false
	}
	return amount, true
}

func (s *Server) handleRegistration(ctx iris.Context) {
	p := readParams(ctx)
	if p["trader_id"] == "" {
		s.reject(ctx, "trader_id")
		return
	}
	teleID, ok := parseClickID(p)
	if !ok {
		s.reject(ctx, "click_id")
		return
	}

	if err := s.svc.Postback().Registration(ctx.Request().Context(), p["trader_id"], teleID); err != nil {
		s.fail(ctx, err)
		return
	}
	s.log.Info("registration postback accepted",
		logger.String("trader_id", p["trader_id"]), logger.Int64("tele_id", teleID))
	_, _ = ctx.WriteString("OK")
}

func (s *Server) handleDeposit(ctx iris.Context) {
	p := readParams(ctx)
	if p["trader_id"] == "" {
		s.reject(ctx, "trader_id")
		return
	}
	teleID, ok := parseClickID(p)
	if !ok {
		s.reject(ctx, "click_id")
		return
	}
	amount, ok := parseAmount(p, "sumdep")
	if !ok {
		s.reject(ctx, "sumdep")
		return
	}

	becameVIP, err := s.svc.Postback().Deposit(ctx.Request().Context(), p["trader_id"], teleID, amount)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.log.Info("deposit postback accepted",
		logger.String("trader_id", p["trader_id"]),
		logger.Int64("tele_id", teleID),
		logger.String("amount", amount.StringFixed(2)),
		logger.Bool("became_vip", becameVIP))
	_, _ = ctx.WriteString("OK")
}

func (s *Server) handleWithdraw(ctx iris.Context) {
	p := readParams(ctx)
	if p["trader_id"] == "" {
		s.reject(ctx, "trader_id")
		return
	}
	teleID, ok := parseClickID(p)
	if !ok {
		s.reject(ctx, "click_id")
		return
	}
	amount, ok := parseAmount(p, "wdr_sum")
	if !ok {
		s.reject(ctx, "wdr_sum")
		return
	}

	if err := s.svc.Postback().Withdraw(ctx.Request().Context(), p["trader_id"], teleID, amount); err != nil {
		s.fail(ctx, err)
		return
	}
	s.log.Info("withdraw postback accepted",
		logger.String("trader_id", p["trader_id"]),
		logger.Int64("tele_id", teleID),
		logger.String("amount", amount.StringFixed(2)))
	_, _ = ctx.WriteString("OK")
}
