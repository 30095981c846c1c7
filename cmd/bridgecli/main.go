// bridgecli is a CLI tool for exercising the Tecopos bridge.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	bridgecli login -bridge URL -usuario USER -password PASS [-region R]
//	bridgecli crear -bridge URL -usuario USER -nombre NAME -precio P [-moneda M] [-categorias A,B]
//	bridgecli monedas -bridge URL -usuario USER -de USD -a CUP [-confirmar] [-forzar-todos]
//	bridgecli entrada -bridge URL -usuario USER -productos 'Arroz:10,Cerveza Cristal:24' [-area ID]
//
// Examples:
//
//	bridgecli login -bridge http://localhost:8080 -usuario admin -password secret
//	bridgecli crear -bridge http://localhost:8080 -usuario admin -nombre "Arroz" -precio 120
//	bridgecli monedas -bridge http://localhost:8080 -usuario admin -de USD -a CUP
//	bridgecli monedas -bridge http://localhost:8080 -usuario admin -de USD -a CUP -confirmar
//	bridgecli entrada -bridge http://localhost:8080 -usuario admin -productos 'Arroz:10' -area 5
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 60 * time.Second}

// Global flags (apply to all commands)
var (
	bridgeURL string
	quiet     bool
	noColor   bool
	verbose   bool
	agentTag  string // Value sent as X-Client-Agent (empty = omit)
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorCyan, colorGray, colorBold = "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		runLogin(args)
	case "crear":
		runCrear(args)
	case "monedas":
		runMonedas(args)
	case "entrada":
		runEntrada(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `bridgecli - Tecopos bridge test tool

Usage:
  bridgecli <command> [options]

Commands:
  login    Authenticate a user and cache the session on the bridge
  crear    Create a product with a price
  monedas  Preview or apply a bulk currency migration
  entrada  Register a stock entry, creating missing products

Examples:
  # Log in once; the bridge keeps the session
  bridgecli login -bridge http://localhost:8080 -usuario admin -password secret

  # Create a product
  bridgecli crear -bridge http://localhost:8080 -usuario admin -nombre "Arroz" -precio 120

  # Preview a currency migration, then apply it
  bridgecli monedas -bridge http://localhost:8080 -usuario admin -de USD -a CUP
  bridgecli monedas -bridge http://localhost:8080 -usuario admin -de USD -a CUP -confirmar

  # List stock areas, then enter stock into one
  bridgecli entrada -bridge http://localhost:8080 -usuario admin -productos 'Arroz:10'
  bridgecli entrada -bridge http://localhost:8080 -usuario admin -productos 'Arroz:10' -area 5

Run 'bridgecli <command> -h' for command-specific options.
`)
}

// commonFlags registers flags shared by every command.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&bridgeURL, "bridge", "http://localhost:8080", "Bridge base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
	fs.StringVar(&agentTag, "agent", "", `X-Client-Agent value, e.g. name="pos-assistant", version="1.0.0"`)
}

// =============================================================================
// LOGIN COMMAND
// =============================================================================

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	commonFlags(fs)
	var usuario, password, region string
	fs.StringVar(&usuario, "usuario", "", "Username (required)")
	fs.StringVar(&password, "password", "", "Password (required)")
	fs.StringVar(&region, "region", "", "Platform region (bridge default if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bridgecli login -usuario USER -password PASS [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if usuario == "" || password == "" {
		fs.Usage()
		os.Exit(1)
	}

	reqBody := map[string]interface{}{
		"usuario":  usuario,
		"password": password,
	}
	if region != "" {
		reqBody["region"] = region
	}

	resp, err := doRequest("POST", "/login-tecopos", reqBody)
	if err != nil {
		fatal("Login failed: %v", err)
	}

	businessID, _ := resp["businessid"].(float64)
	if quiet {
		fmt.Println(int(businessID))
	} else {
		printSuccess("Logged in as %s", usuario)
		fmt.Printf("  Business ID: %s%d%s\n", colorCyan, int(businessID), colorReset)
	}
}

// =============================================================================
// CREAR COMMAND
// =============================================================================

func runCrear(args []string) {
	fs := flag.NewFlagSet("crear", flag.ExitOnError)
	commonFlags(fs)
	var usuario, nombre, moneda, tipo, categorias string
	var precio, costo float64
	fs.StringVar(&usuario, "usuario", "", "Logged-in username (required)")
	fs.StringVar(&nombre, "nombre", "", "Product name (required)")
	fs.Float64Var(&precio, "precio", 0, "Sale price (required)")
	fs.Float64Var(&costo, "costo", 0, "Cost price (optional)")
	fs.StringVar(&moneda, "moneda", "", "Currency code (bridge default if empty)")
	fs.StringVar(&tipo, "tipo", "", "Product type (STOCK if empty)")
	fs.StringVar(&categorias, "categorias", "", "Comma-separated category names")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bridgecli crear -usuario USER -nombre NAME -precio P [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if usuario == "" || nombre == "" || precio <= 0 {
		fs.Usage()
		os.Exit(1)
	}

	reqBody := map[string]interface{}{
		"usuario": usuario,
		"nombre":  nombre,
		"precio":  precio,
	}
	if costo > 0 {
		reqBody["costo"] = costo
	}
	if moneda != "" {
		reqBody["moneda"] = moneda
	}
	if tipo != "" {
		reqBody["tipo"] = tipo
	}

	path := "/crear-producto"
	if categorias != "" {
		path = "/crear-producto-con-categoria"
		reqBody["categorias"] = splitTrimmed(categorias)
	}

	resp, err := doRequest("POST", path, reqBody)
	if err != nil {
		fatal("Failed to create product: %v", err)
	}

	mensaje, _ := resp["mensaje"].(string)
	if quiet {
		fmt.Println(resp["status"])
	} else {
		printSuccess("%s", mensaje)
	}
}

// =============================================================================
// MONEDAS COMMAND
// =============================================================================

func runMonedas(args []string) {
	fs := flag.NewFlagSet("monedas", flag.ExitOnError)
	commonFlags(fs)
	var usuario, de, a string
	var confirmar, forzarTodos bool
	fs.StringVar(&usuario, "usuario", "", "Logged-in username (required)")
	fs.StringVar(&de, "de", "", "Currency code to migrate from (required)")
	fs.StringVar(&a, "a", "", "Currency code to migrate to (required)")
	fs.BoolVar(&confirmar, "confirmar", false, "Apply the changes (preview without it)")
	fs.BoolVar(&forzarTodos, "forzar-todos", false, "Include products with multiple price entries")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bridgecli monedas -usuario USER -de USD -a CUP [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if usuario == "" || de == "" || a == "" {
		fs.Usage()
		os.Exit(1)
	}

	reqBody := map[string]interface{}{
		"usuario":       usuario,
		"moneda_actual": de,
		"nueva_moneda":  a,
		"confirmar":     confirmar,
		"forzar_todos":  forzarTodos,
	}

	resp, err := doRequest("POST", "/actualizar-monedas", reqBody)
	if err != nil {
		fatal("Currency migration failed: %v", err)
	}

	status, _ := resp["status"].(string)
	if quiet {
		fmt.Println(status)
		return
	}

	switch status {
	case "pendiente":
		pending, _ := resp["productos_para_cambiar"].([]interface{})
		printWarning("Preview: %d products would change (re-run with -confirmar)", len(pending))
		for _, p := range pending {
			if pm, ok := p.(map[string]interface{}); ok {
				fmt.Printf("  - %s%v%s\n", colorCyan, pm["nombre"], colorReset)
			}
		}
	case "ok":
		updated, _ := resp["productos_actualizados"].([]interface{})
		printSuccess("Updated %d products", len(updated))
	default:
		printWarning("Status: %s", status)
	}
}

// =============================================================================
// ENTRADA COMMAND
// =============================================================================

func runEntrada(args []string) {
	fs := flag.NewFlagSet("entrada", flag.ExitOnError)
	commonFlags(fs)
	var usuario, productos string
	var area int
	fs.StringVar(&usuario, "usuario", "", "Logged-in username (required)")
	fs.StringVar(&productos, "productos", "", "Comma-separated name:quantity pairs (required)")
	fs.IntVar(&area, "area", 0, "Stock area ID (omit to list available areas)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bridgecli entrada -usuario USER -productos 'Arroz:10,Azúcar:5' [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if usuario == "" || productos == "" {
		fs.Usage()
		os.Exit(1)
	}

	lines, err := parseProductLines(productos)
	if err != nil {
		fatal("Invalid -productos: %v", err)
	}

	reqBody := map[string]interface{}{
		"usuario":   usuario,
		"productos": lines,
	}
	if area > 0 {
		reqBody["stockAreaId"] = area
	}

	resp, err := doRequest("POST", "/entrada-inteligente", reqBody)
	if err != nil {
		fatal("Stock entry failed: %v", err)
	}

	status, _ := resp["status"].(string)
	if quiet {
		fmt.Println(status)
		return
	}

	switch status {
	case "seleccion_requerida":
		areas, _ := resp["areas"].([]interface{})
		printWarning("Select a stock area and re-run with -area ID")
		for _, a := range areas {
			if am, ok := a.(map[string]interface{}); ok {
				fmt.Printf("  - %s%v%s: %v\n", colorCyan, am["id"], colorReset, am["name"])
			}
		}
	case "ok":
		processed, _ := resp["productos_procesados"].([]interface{})
		printSuccess("Entered stock for %d products", len(processed))
		for _, p := range processed {
			fmt.Printf("  - %s%v%s\n", colorCyan, p, colorReset)
		}
	default:
		printWarning("Status: %s", status)
	}
}

// parseProductLines parses "Arroz:10,Cerveza Cristal:24" into request lines.
func parseProductLines(s string) ([]map[string]interface{}, error) {
	var lines []map[string]interface{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("%q is not name:quantity", part)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(part[idx+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q has a non-numeric quantity", part)
		}
		lines = append(lines, map[string]interface{}{
			"nombre":   strings.TrimSpace(part[:idx]),
			"cantidad": qty,
		})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no product lines")
	}
	return lines, nil
}

func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	reqURL := bridgeURL + path
	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if agentTag != "" {
		req.Header.Set("X-Client-Agent", agentTag)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
