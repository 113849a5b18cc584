// chess-cli is a local two-player game in the terminal. Moves are entered in
// coordinate notation (e2e4, e7e8q).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/doorgames/chess-backend/internal/chess"
	"github.com/fatih/color"
)

var (
	lightSquare = color.New(color.BgHiWhite, color.FgBlack)
	darkSquare  = color.New(color.BgGreen, color.FgBlack)
	labels      = color.New(color.Bold)
)

func main() {
	fen := flag.String("fen", chess.StartingFEN, "starting position in FEN")
	flag.Parse()

	board, err := chess.FromFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad position:", err)
		os.Exit(1)
	}

	fmt.Println("Type a move (e2e4), or: moves, fen, resign, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println()
		fmt.Println(draw(board))
		if board.IsInCheck(board.SideToMove) {
			fmt.Println("Check!")
		}

		fmt.Printf("%s> ", board.SideToMove)
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case "quit":
			return
		case "fen":
			fmt.Println(board.FEN())
			continue
		case "moves":
			printMoves(board)
			continue
		case "resign":
			fmt.Printf("%s resigns. %s wins.\n", board.SideToMove, board.SideToMove.Opposite())
			return
		}

		mv, err := chess.ParseMove(input)
		if err != nil {
			fmt.Println("bad input:", err)
			continue
		}
		result, err := board.MakeMove(mv)
		if err != nil {
			fmt.Println("illegal move")
			continue
		}

		switch {
		case result.Checkmate:
			fmt.Println()
			fmt.Println(draw(board))
			fmt.Printf("Checkmate! %s wins.\n", board.SideToMove.Opposite())
			return
		case result.Stalemate:
			fmt.Println()
			fmt.Println(draw(board))
			fmt.Println("Stalemate. Draw.")
			return
		case board.HalfmoveClock >= 100:
			fmt.Println()
			fmt.Println(draw(board))
			fmt.Println("Fifty-move rule. Draw.")
			return
		}
	}
}

func draw(b *chess.Board) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(labels.Sprintf(" %d ", rank+1))
		for file := 0; file < 8; file++ {
			sq := chess.NewSquare(file, rank)
			sym := " "
			if p := b.At(sq); !p.Empty() {
				sym = string(p.Symbol())
			}
			cell := fmt.Sprintf(" %s ", sym)
			if (file+rank)%2 == 0 {
				sb.WriteString(darkSquare.Sprint(cell))
			} else {
				sb.WriteString(lightSquare.Sprint(cell))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(labels.Sprint("    a  b  c  d  e  f  g  h"))
	return sb.String()
}

func printMoves(b *chess.Board) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		fmt.Println("no legal moves")
		return
	}
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Algebraic()
	}
	fmt.Println(strings.Join(out, " "))
}
