// Command tcplistener is a debugging aid: it accepts raw TCP connections,
// prints the parsed request, and answers with a fixed plain-text response.
package main

import (
	"flag"
	"fmt"
	"net"

	"httpserve/internal/request"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4221", "listen address")
	flag.Parse()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Println("listen failed:", err)
		return
	}
	defer listener.Close()
	fmt.Println("Listening on", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println("accept error:", err)
			continue
		}

		go handleConnection(conn)
	}
}

func handleConnection(conn net.Conn) {
	defer conn.Close()

	req, err := request.RequestFromReader(conn)
	if err != nil {
		fmt.Println("parse failed:", err)
		return
	}

	fmt.Println("Request Line")
	fmt.Printf("Method: %s\n", req.Method)
	fmt.Printf("Path: %s\n", req.Path)
	fmt.Printf("Version: HTTP/%d.%d\n", req.Major, req.Minor)

	fmt.Println("Headers")
	for _, f := range req.Headers.All() {
		fmt.Printf("%s: %s\n", f.Name, f.Value)
	}
	fmt.Println("Body")
	fmt.Printf("%s\n", string(req.Body))

	body := "Hello from your HTTP server!\n"

	response := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\n"+
			"Content-Length: %d\r\n"+
			"Content-Type: text/plain\r\n"+
			"\r\n"+
			"%s",
		len(body),
		body,
	)

	conn.Write([]byte(response))
}
