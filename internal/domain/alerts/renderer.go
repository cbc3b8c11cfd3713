package alerts

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/querybuilder/internal/platform/templating"
)

const loginDialog = `<div id="i2b2_login_modal_dialog" class="UNC-Custom-Panel" style="display:block;">
	<div class="hd UNC-Custom-Panel-Head">{LOGIN_HEADER}</div>
	<div class="bd login-dialog">
		<form name="loginForm" style="margin:0;padding:0;" onsubmit="i2b2.PM.doLogin(); return false;">
			<div id="loginMessage">Login incorrect or host not found.</div>
			<div class="formDiv">
				<div class="label">Username:</div>
				<div class="input"><input type="text" name="uname" id="loginusr" value="" size="20" maxlength="50" /></div>
				<div class="label">Password:</div>
				<div class="input"><input type="password" name="pword" id="loginpass" value="" size="20" maxlength="50" /></div>
				<div class="label">i2b2 Host:</div>
				<div class="input"><select name="server" id="logindomain"><option value="">Loading...</option></select></div>
				<div class="button"><input type="button" value="  Login  " onclick="i2b2.PM.doLogin()" /></div>
			</div>
		</form>
	</div>
	<div class="bd login-announce">{LOGIN_ANNOUNCE}</div>
`

const maintenanceBanner = `<div class="login-maint">
	<div class="Sys-Alert-Head">
		<div class="Sys-Alert-Head-Text">
			<span class="Sys-Alert-Icon UNCIcon">
				<img src="assets/unc_module/images/error.png">
			</span>
			<span >System Alert</span>
		</div>
	</div>
	<div class="Sys-Alert-Body">
 {MAINT_MESSAGE} 	</div>
</div>
`

const holidayBanner = `<div class="login-maint">
	<div class="Sys-Notice-Head-Holiday">
		<div class="Sys-Notice-Head-Text">
			<span class="Sys-Alert-Icon UNCIcon">
				<img src="assets/unc_module/images/help.png">
			</span>
			<span >Holiday Notice</span>
		</div>
	</div>
	<div class="Sys-Notice-Body">
 {HOLIDAY_MESSAGE}	</div>
</div>
`

const systemBanner = `<div class="login-maint">
	<div class="Sys-Notice-Head">
		<div class="Sys-Notice-Head-Text">
			<span class="Sys-Alert-Icon UNCIcon">
				<img src="assets/unc_module/images/help.png">
			</span>
			<span >{ALERT_TITLE}</span>
		</div>
	</div>
	<div class="Sys-Notice-Body">
 {ALERT_MESSAGE}	</div>
</div>
`

// Default alert messages.
const (
	DefaultMaintenanceMessage = `i2b2 will be unavailable while undergoing scheduled maintenance on <span class="alertDate"> {MAINT_START_DATE} at {MAINT_START_TIME}</span> and expected to complete by <span class="alertDate"> {MAINT_END_DATE} at {MAINT_END_TIME}</span>`
	DefaultHolidayMessage     = `<p> Begining {HOLIDAY_START_DATE} i2b2@UNC will be under limited support during the holiday season and continue through {HOLIDAY_END_DATE}. Issues or questions concerning the application may not be responded to until service returns.</p>`
	DefaultLoginHeader        = "i2b2 Login"
	DefaultLoginAnnounce      = `<p class="login-announce-welcome">Welcome to i2b2!</p>`
)

// SystemAlert is a banner switched on and off by hand.
type SystemAlert struct {
	Active  bool
	Title   string
	Message string
}

// Config holds the login page content and alert schedules.
type Config struct {
	LoginHeader        string
	LoginAnnounce      string
	Maintenance        Window
	MaintenanceMessage string
	Holiday            Window
	HolidayMessage     string
	System             SystemAlert
	// Location is the zone alert windows are scheduled in. Nil means local time.
	Location *time.Location
}

// Renderer builds the login dialog with any active alerts below it.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer. Empty messages fall back to the defaults.
func NewRenderer(cfg Config, logger zerolog.Logger) *Renderer {
	if cfg.LoginHeader == "" {
		cfg.LoginHeader = DefaultLoginHeader
	}
	if cfg.LoginAnnounce == "" {
		cfg.LoginAnnounce = DefaultLoginAnnounce
	}
	if cfg.MaintenanceMessage == "" {
		cfg.MaintenanceMessage = DefaultMaintenanceMessage
	}
	if cfg.HolidayMessage == "" {
		cfg.HolidayMessage = DefaultHolidayMessage
	}
	for name, w := range map[string]Window{"maintenance": cfg.Maintenance, "holiday": cfg.Holiday} {
		if _, _, err := w.Bounds(cfg.Location); err != nil && !errors.Is(err, errNotScheduled) {
			logger.Warn().Err(err).Str("alert", name).Msg("alert window is malformed and will not be shown")
		}
	}
	return &Renderer{cfg: cfg}
}

// Active lists the alerts shown at now.
type Active struct {
	Maintenance bool `json:"maintenance"`
	Holiday     bool `json:"holiday"`
	System      bool `json:"system"`
}

// Render returns the login dialog HTML at now.
func (r *Renderer) Render(now time.Time) string {
	html, _ := r.render(now)
	return html
}

// Status reports which alerts are active at now.
func (r *Renderer) Status(now time.Time) Active {
	_, active := r.render(now)
	return active
}

func (r *Renderer) render(now time.Time) (string, Active) {
	var b strings.Builder
	var active Active

	b.WriteString(templating.Render(loginDialog, map[string]string{
		"LOGIN_HEADER":   r.cfg.LoginHeader,
		"LOGIN_ANNOUNCE": r.cfg.LoginAnnounce,
	}))

	if msg, ok := r.windowMessage(r.cfg.Maintenance, r.cfg.MaintenanceMessage, "MAINT", now); ok {
		b.WriteString(templating.Render(maintenanceBanner, map[string]string{"MAINT_MESSAGE": msg}))
		active.Maintenance = true
	}
	if msg, ok := r.windowMessage(r.cfg.Holiday, r.cfg.HolidayMessage, "HOLIDAY", now); ok {
		b.WriteString(templating.Render(holidayBanner, map[string]string{"HOLIDAY_MESSAGE": msg}))
		active.Holiday = true
	}
	if r.cfg.System.Active {
		b.WriteString(templating.Render(systemBanner, map[string]string{
			"ALERT_TITLE":   r.cfg.System.Title,
			"ALERT_MESSAGE": r.cfg.System.Message,
		}))
		active.System = true
	}

	b.WriteString("</div>\n")
	return b.String(), active
}

// windowMessage fills a scheduled alert's message with its start and end,
// using placeholders named <prefix>_START_DATE, <prefix>_START_TIME and so on.
func (r *Renderer) windowMessage(w Window, msg, prefix string, now time.Time) (string, bool) {
	start, end, ok := Timing(w, r.cfg.Location, now)
	if !ok {
		return "", false
	}
	return templating.Render(msg, map[string]string{
		prefix + "_START_DATE": FormatDate(start),
		prefix + "_START_TIME": FormatAMPM(start),
		prefix + "_END_DATE":   FormatDate(end),
		prefix + "_END_TIME":   FormatAMPM(end),
	}), true
}
