package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// component é um binário do MapVision.
type component struct {
	name   string
	dir    string
	output string
	cgo    bool // sqlite (servidor) e raylib (cliente) precisam de CGO
	gui    bool
}

var components = []component{
	{name: "SERVIDOR", dir: "servidor", output: "servidor/server", cgo: true},
	{name: "CLIENTE", dir: "cliente", output: "cliente/client", cgo: true, gui: true},
	{name: "LAUNCHER", dir: "launcher", output: "MapVision"},
}

func main() {
	runTests := flag.Bool("test", false, "Rodar go test ./... antes de compilar")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║        MapVision Builder             ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()
	setupEnvironment()

	if *runTests {
		fmt.Println(ColorYellow + "\n[+] Rodando testes..." + ColorReset)
		if err := goCmd(true, "test", "./shared/...", "./servidor/...", "./cliente/internal/client/...", "./cliente/internal/overlay/..."); err != nil {
			fatal(fmt.Errorf("testes falharam: %w", err))
		}
	}

	for i, c := range components {
		if err := buildComponent(i+1, c); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: Execute o '" + exe("MapVision") + "' para abrir servidor e overlay." + ColorReset)
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0] Configurando ambiente de compilação..." + ColorReset)

	// MSYS2 fornece o gcc no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func ldflags(c component) string {
	flags := "-s -w"
	if runtime.GOOS == "windows" {
		if c.cgo {
			flags = "-extldflags=-static " + flags
		}
		if c.gui {
			flags += " -H=windowsgui"
		}
	}
	return flags
}

func buildComponent(step int, c component) error {
	fmt.Printf(ColorYellow+"\n[%d/%d] Compilando %s..."+ColorReset+"\n", step, len(components), c.name)

	output := exe(c.output)
	if err := goCmd(c.cgo, "build", "-ldflags", ldflags(c), "-o", output, "./"+c.dir); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", c.name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", c.name, output)
	return nil
}

func goCmd(cgo bool, args ...string) error {
	cgoValue := "0"
	if cgo {
		cgoValue = "1"
	}
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func fatal(err error) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	os.Exit(1)
}
