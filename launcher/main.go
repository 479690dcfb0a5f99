package main

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// binary acrescenta .exe no Windows.
func binary(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func main() {
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║         MapVision Launcher           ║")
	fmt.Println("╚══════════════════════════════════════╝")

	fmt.Println("[1/2] Iniciando Servidor...")
	serverPath, err := filepath.Abs(filepath.Join("servidor", binary("server")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do servidor: %v", err)
	}

	// No Windows o servidor abre em janela própria para mostrar os logs
	var serverCmd *exec.Cmd
	if runtime.GOOS == "windows" {
		serverCmd = exec.Command("cmd", "/c", "start", "MapVision SERVER", serverPath)
	} else {
		serverCmd = exec.Command(serverPath)
	}
	serverCmd.Dir = "servidor"
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	fmt.Println("Aguardando inicialização do servidor...")
	time.Sleep(2 * time.Second)

	fmt.Println("[2/2] Abrindo Cliente...")
	clientPath, err := filepath.Abs(filepath.Join("cliente", binary("client")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do cliente: %v", err)
	}

	clientCmd := exec.Command(clientPath)
	clientCmd.Dir = "cliente"
	if err := clientCmd.Start(); err != nil {
		fmt.Printf("ERRO CRÍTICO: Não foi possível executar o cliente em %s\n", clientPath)
		fmt.Printf("Detalhes: %v\n", err)
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
		return
	}

	fmt.Println("\nSucesso! MapVision foi iniciado.")

	// Fora do Windows o servidor é filho do launcher; espera o cliente fechar para encerrá-lo
	if runtime.GOOS != "windows" {
		clientCmd.Wait()
		if serverCmd.Process != nil {
			serverCmd.Process.Kill()
		}
		return
	}
	time.Sleep(2 * time.Second)
}
