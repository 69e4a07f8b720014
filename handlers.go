package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rationdist/auth"
	"rationdist/beneficiary"
	"rationdist/distribution"
	"rationdist/intake"
	"rationdist/inventory"
	"rationdist/pkg/apperr"
	"rationdist/pkg/receipt"
	"rationdist/process/report"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// render fills the fields every page uses and renders the named template.
func (s *server) render(c *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["user"] = principalFrom(c)
	if _, ok := data["flash"]; !ok {
		data["flash"] = popFlash(c)
	}
	c.HTML(status, page, data)
}

// fail renders an error page for err.
func (s *server) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	s.render(c, status, "error.html", "Error", gin.H{"status": status, "message": apperr.Message(err)})
}

func formError(err error) *flash {
	return &flash{Category: "danger", Message: "Error: " + apperr.Message(err)}
}

func (s *server) indexPage(c *gin.Context) {
	data := gin.H{}
	if c.Query("error") == "invalid" {
		if f := popFlash(c); f != nil {
			data["flash"] = f
		} else {
			data["flash"] = &flash{Category: "danger", Message: "Invalid username or password."}
		}
	}
	s.render(c, http.StatusOK, "index.html", "Login", data)
}

func (s *server) login(c *gin.Context) {
	var req struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}
	_ = c.ShouldBind(&req)
	p, err := auth.Authenticate(c.Request.Context(), s.db, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("login lookup failed", zap.Error(err))
		}
		setFlash(c, "danger", "Invalid username or password.")
		c.Redirect(http.StatusFound, "/?error=invalid")
		return
	}
	if err := s.startSession(c, p); err != nil {
		s.fail(c, apperr.Persistence("failed to start session", err))
		return
	}
	s.logger.Info("distributor logged in", zap.String("username", p.Username))
	setFlash(c, "success", "Login successful!")
	c.Redirect(http.StatusFound, "/dashboard_page")
}

func (s *server) logout(c *gin.Context) {
	s.clearSession(c)
	setFlash(c, "info", "Logged out successfully.")
	c.Redirect(http.StatusFound, "/")
}

func (s *server) healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) dashboardPage(c *gin.Context) {
	today, _ := report.ParseDay("", time.Now())
	summary, err := report.Daily(c.Request.Context(), s.db, today)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "dashboard_page.html", "Dashboard", gin.H{"summary": summary})
}

// inventory

func (s *server) addRationPage(c *gin.Context) {
	s.render(c, http.StatusOK, "add_ration.html", "Add Ration Item", gin.H{"form": inventory.Form{}})
}

func (s *server) addRation(c *gin.Context) {
	var f inventory.Form
	_ = c.ShouldBind(&f)
	if _, err := s.inventory.Create(c.Request.Context(), principalFrom(c), f); err != nil {
		s.render(c, apperr.HTTPStatus(err), "add_ration.html", "Add Ration Item", gin.H{
			"form":  f,
			"flash": &flash{Category: "danger", Message: "Error adding item: " + apperr.Message(err)},
		})
		return
	}
	setFlash(c, "success", "Ration item added successfully!")
	c.Redirect(http.StatusFound, "/view_ration")
}

func (s *server) viewRation(c *gin.Context) {
	items, err := s.inventory.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "view_ration.html", "Ration Inventory", gin.H{"items": items})
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.NotFound("ration item not found")
	}
	return uint(id), nil
}

func (s *server) editRationPage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	item, err := s.inventory.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "edit_ration.html", "Edit Ration Item", gin.H{"id": item.ID, "form": inventory.FormFor(*item)})
}

func (s *server) editRation(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var f inventory.Form
	_ = c.ShouldBind(&f)
	if _, err := s.inventory.Update(c.Request.Context(), principalFrom(c), id, f); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.fail(c, err)
			return
		}
		s.render(c, apperr.HTTPStatus(err), "edit_ration.html", "Edit Ration Item", gin.H{
			"id":    id,
			"form":  f,
			"flash": formError(err),
		})
		return
	}
	setFlash(c, "info", "Item updated successfully!")
	c.Redirect(http.StatusFound, "/view_ration")
}

func (s *server) deleteRation(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.inventory.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		s.fail(c, err)
		return
	}
	setFlash(c, "info", "Item deleted.")
	c.Redirect(http.StatusFound, "/view_ration")
}

// distribution and receipts

func (s *server) renderDistributionForm(c *gin.Context, status int, in distribution.Input, f *flash) {
	beneficiaries, err := s.registry.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	data := gin.H{"beneficiaries": beneficiaries, "form": in}
	if f != nil {
		data["flash"] = f
	}
	s.render(c, status, "ration_distribution.html", "Ration Distribution", data)
}

func (s *server) distributionPage(c *gin.Context) {
	s.renderDistributionForm(c, http.StatusOK, distribution.Input{DistributionDate: time.Now().Format(distribution.DateLayout)}, nil)
}

func (s *server) recordDistribution(c *gin.Context) {
	var in distribution.Input
	_ = c.ShouldBind(&in)
	res, err := s.recorder.Record(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		s.renderDistributionForm(c, apperr.HTTPStatus(err), in, formError(err))
		return
	}
	setFlash(c, "success", "Ration distributed successfully.")
	c.Redirect(http.StatusFound, "/receipt?id="+res.Receipt.ID.String())
}

func (s *server) showReceipt(c *gin.Context) {
	v, err := s.recorder.Receipt(c.Request.Context(), c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "receipt.html", "Receipt", gin.H{"receipt": v, "lines": v.Lines(), "heading": receipt.Title})
}

func (s *server) downloadReceipt(c *gin.Context) {
	v, err := s.recorder.Receipt(c.Request.Context(), c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	doc, err := s.exporter.Bytes(*v)
	if err != nil {
		s.fail(c, apperr.Persistence("failed to build receipt document", err))
		return
	}
	if s.archive != nil {
		key := s.archive.ObjectKey(v.ID, v.Filename())
		if url, err := s.archive.Upload(c.Request.Context(), key, receipt.MIMEType, doc); err != nil {
			s.logger.Warn("receipt archive failed", zap.String("receipt", v.ID), zap.Error(err))
		} else {
			s.logger.Info("receipt archived", zap.String("receipt", v.ID), zap.String("url", url))
		}
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, v.Filename()))
	c.Data(http.StatusOK, receipt.MIMEType, doc)
}

func (s *server) viewDistributions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	views, err := s.recorder.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "view_distributions.html", "Recent Distributions", gin.H{"receipts": views})
}

func (s *server) dailyReport(c *gin.Context) {
	day, err := report.ParseDay(c.Query("date"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := report.Daily(c.Request.Context(), s.db, day)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// requests and beneficiaries

func (s *server) renderRequestsPage(c *gin.Context, status int, f intake.Form, fl *flash) {
	ctx := c.Request.Context()
	beneficiaries, err := s.registry.List(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	requests, err := s.intake.List(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	data := gin.H{"beneficiaries": beneficiaries, "requests": requests, "form": f}
	if fl != nil {
		data["flash"] = fl
	}
	s.render(c, status, "ration_requests.html", "Ration Requests", data)
}

func (s *server) requestsPage(c *gin.Context) {
	s.renderRequestsPage(c, http.StatusOK, intake.Form{}, nil)
}

func (s *server) submitRequest(c *gin.Context) {
	var f intake.Form
	_ = c.ShouldBind(&f)
	if _, err := s.intake.Create(c.Request.Context(), principalFrom(c), f); err != nil {
		s.renderRequestsPage(c, apperr.HTTPStatus(err), f, formError(err))
		return
	}
	setFlash(c, "success", "Request submitted successfully.")
	c.Redirect(http.StatusFound, "/dashboard_page")
}

func (s *server) beneficiaryList(c *gin.Context) {
	list, err := s.registry.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "view_beneficiary_list.html", "Beneficiaries", gin.H{"beneficiaries": list})
}

func (s *server) updateStatus(c *gin.Context) {
	var f beneficiary.StatusForm
	_ = c.ShouldBind(&f)
	if _, err := s.registry.UpdateStatus(c.Request.Context(), principalFrom(c), f); err != nil {
		s.fail(c, err)
		return
	}
	setFlash(c, "info", "Status updated successfully.")
	c.Redirect(http.StatusFound, "/view_beneficiary_list")
}

// live events

const pongWait = 60 * time.Second

func (s *server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
				return true
			}
			for _, o := range s.cfg.CORS.AllowedOrigins {
				if o == origin || o == "*" {
					return true
				}
			}
			return false
		},
	}
}

// serveWs streams application events to a logged-in dashboard. The read
// loop only services pings and detects the close.
func (s *server) serveWs(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	s.hub.Register(id, conn)
	defer func() {
		s.hub.Unregister(id)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
