package calculator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/leekchan/accounting"
	"github.com/patrickmn/go-cache"

	"resultflow/actions"
	"resultflow/items"
	"resultflow/modules"
)

const (
	moduleName       = "Calculator"
	defaultIconPath  = "https://img.icons8.com/badges/100/calculator.png"
	programCacheTTL  = 10 * time.Minute
	resultPrecision  = 8
	maxGroupedDigits = 15
)

// Config is the configuration snapshot applied by Configure.
type Config struct {
	Enabled  bool
	IconPath string
}

type snapshot struct {
	enabled  bool
	iconPath string
}

type CalculatorModule struct {
	clipboard actions.Clipboard
	mathEnv   map[string]interface{}
	programs  *cache.Cache
	state     atomic.Pointer[snapshot]
	logger    *slog.Logger
}

var _ modules.Module = (*CalculatorModule)(nil)

func NewCalculatorModule(clipboard actions.Clipboard, logger *slog.Logger) *CalculatorModule {
	if logger == nil {
		logger = slog.Default()
	}
	mathEnv := map[string]interface{}{
		"pi":    math.Pi,
		"e":     math.E,
		"phi":   (1 + math.Sqrt(5)) / 2,
		"sqrt":  func(x float64) float64 { return math.Sqrt(x) },
		"cbrt":  func(x float64) float64 { return math.Cbrt(x) },
		"abs":   func(x float64) float64 { return math.Abs(x) },
		"log":   func(x float64) float64 { return math.Log(x) },
		"log10": func(x float64) float64 { return math.Log10(x) },
		"log2":  func(x float64) float64 { return math.Log2(x) },
		"logb":  func(x, base float64) float64 { return math.Log(x) / math.Log(base) },
		"exp":   func(x float64) float64 { return math.Exp(x) },
		"pow":   func(base, exp float64) float64 { return math.Pow(base, exp) },
		"sin":   func(x float64) float64 { return math.Sin(x) },
		"cos":   func(x float64) float64 { return math.Cos(x) },
		"tan":   func(x float64) float64 { return math.Tan(x) },
		"asin":  func(x float64) float64 { return math.Asin(x) },
		"acos":  func(x float64) float64 { return math.Acos(x) },
		"atan":  func(x float64) float64 { return math.Atan(x) },
		"atan2": func(y, x float64) float64 { return math.Atan2(y, x) },
		"sind":  func(deg float64) float64 { return math.Sin(deg * math.Pi / 180) },
		"cosd":  func(deg float64) float64 { return math.Cos(deg * math.Pi / 180) },
		"tand":  func(deg float64) float64 { return math.Tan(deg * math.Pi / 180) },
		"ceil":  func(x float64) float64 { return math.Ceil(x) },
		"floor": func(x float64) float64 { return math.Floor(x) },
		"round": func(x float64) float64 { return math.Round(x) },
		"min":   func(x, y float64) float64 { return math.Min(x, y) },
		"max":   func(x, y float64) float64 { return math.Max(x, y) },
		"mod":   func(x, y float64) float64 { return math.Mod(x, y) },
		"fact": func(n int) (int, error) {
			if n < 0 {
				return 0, fmt.Errorf("factorial undefined for negative")
			}
			if n > 20 {
				return 0, fmt.Errorf("factorial too large")
			}
			res := 1
			for i := 2; i <= n; i++ {
				res *= i
			}
			return res, nil
		},
	}

	return &CalculatorModule{
		clipboard: clipboard,
		mathEnv:   mathEnv,
		programs:  cache.New(programCacheTTL, programCacheTTL*2),
		logger:    logger,
	}
}

func (m *CalculatorModule) Name() string {
	return moduleName
}

func (m *CalculatorModule) Enabled() bool {
	snap := m.state.Load()
	return snap != nil && snap.enabled
}

func (m *CalculatorModule) DefaultIconPath() string {
	if snap := m.state.Load(); snap != nil && snap.iconPath != "" {
		return snap.iconPath
	}
	return defaultIconPath
}

func (m *CalculatorModule) Ownership() modules.Ownership {
	return modules.OwnershipFresh
}

func (m *CalculatorModule) Configure(cfg Config) error {
	m.state.Store(&snapshot{enabled: cfg.Enabled, iconPath: cfg.IconPath})
	return nil
}

var (
	numberRegex = regexp.MustCompile(`[0-9]+(?:[0-9\s ,.]*[0-9])?`)
	digitsRegex = regexp.MustCompile(`^\d+$`)
)

func normalizeNumberString(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	dotIdx := strings.LastIndex(s, ".")
	commaIdx := strings.LastIndex(s, ",")

	if dotIdx != -1 && commaIdx != -1 {
		if commaIdx > dotIdx {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	} else if commaIdx != -1 {
		parts := strings.Split(s, ",")
		lastPart := parts[len(parts)-1]
		if len(lastPart) >= 1 && len(lastPart) <= 3 && digitsRegex.MatchString(lastPart) && strings.Count(s, ",") == 1 {
			s = strings.Join(parts[:len(parts)-1], "") + "." + lastPart
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

func preprocessQuery(query string) string {
	processed := strings.ReplaceAll(query, "%", "/100.0")
	processed = numberRegex.ReplaceAllStringFunc(processed, normalizeNumberString)
	return processed
}

func (m *CalculatorModule) compile(processed string) (*vm.Program, error) {
	if cached, found := m.programs.Get(processed); found {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(processed, expr.Env(m.mathEnv))
	if err != nil {
		return nil, err
	}
	m.programs.Set(processed, program, cache.DefaultExpiration)
	return program, nil
}

// evaluate returns the plain textual result of query, or ok=false when the
// query is not an expression this module understands.
func (m *CalculatorModule) evaluate(query string) (result string, numeric float64, isNumber bool, ok bool) {
	program, err := m.compile(preprocessQuery(query))
	if err != nil {
		return "", 0, false, false
	}

	output, err := expr.Run(program, m.mathEnv)
	if err != nil {
		return "", 0, false, false
	}

	switch v := output.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", 0, false, false
		}
		result = strconv.FormatFloat(v, 'f', resultPrecision, 64)
		result = strings.TrimRight(result, "0")
		result = strings.TrimRight(result, ".")
		return result, v, true, true
	case int:
		return strconv.Itoa(v), float64(v), true, true
	case int64:
		return strconv.FormatInt(v, 10), float64(v), true, true
	case bool:
		return strconv.FormatBool(v), 0, false, true
	default:
		return "", 0, false, false
	}
}

// formatGrouped renders a number with thousand separators, keeping as many
// decimals as the plain result carries.
func formatGrouped(plain string, value float64) string {
	precision := 0
	if idx := strings.IndexByte(plain, '.'); idx != -1 {
		precision = len(plain) - idx - 1
	}
	if math.Abs(value) >= math.Pow10(maxGroupedDigits) {
		return plain
	}
	ac := accounting.Accounting{
		Symbol:    "",
		Precision: precision,
		Thousand:  ",",
		Decimal:   ".",
	}
	return ac.FormatMoneyFloat64(value)
}

func (m *CalculatorModule) ProcessQuery(ctx context.Context, query string) ([]items.Item, error) {
	snap := m.state.Load()
	if snap == nil || !snap.enabled {
		return nil, modules.ErrDisabled
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	result, value, isNumber, ok := m.evaluate(trimmed)
	if !ok {
		return nil, nil
	}

	grouped := result
	if isNumber {
		grouped = formatGrouped(result, value)
	}

	item, err := m.buildItem(trimmed, result, grouped)
	if err != nil {
		m.logger.Warn("calculator: could not build item", "query", trimmed, "error", err)
		return nil, nil
	}
	return []items.Item{item}, nil
}

func (m *CalculatorModule) buildItem(expression, result, grouped string) (items.Item, error) {
	primary, err := actions.NewCopyToClipboard(result, m.clipboard)
	if err != nil {
		return nil, err
	}
	icon := items.Icon{Path: m.DefaultIconPath()}

	children := func() []items.Item {
		var out []items.Item
		out = append(out, m.copyItem("Copy result", result, icon))
		if grouped != result {
			out = append(out, m.copyItem("Copy formatted result", grouped, icon))
		}
		out = append(out, m.copyItem("Copy expression", expression+" = "+result, icon))
		return out
	}

	group, err := items.NewGroup().
		Name(grouped).
		Info(fmt.Sprintf("Result for: %s", expression)).
		Icon(icon).
		Action(primary).
		Children(children).
		Build()
	if err != nil {
		return nil, err
	}
	return group, nil
}

// copyItem returns nil on failure; Group drops nil children.
func (m *CalculatorModule) copyItem(name, text string, icon items.Icon) items.Item {
	action, err := actions.NewCopyToClipboard(text, m.clipboard)
	if err != nil {
		return nil
	}
	item, err := items.NewStandard().Name(name).Info(text).Icon(icon).Action(action).Build()
	if err != nil {
		return nil
	}
	return item
}
