// Package nnue implements the engine's efficiently updatable neural network
// evaluator: a 768-input, two-perspective linear layer with clipped-ReLU
// activation reducing to a single centipawn-scaled output.
package nnue

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spamdrew128/Galumph/internal/board"
)

// Network dimensions and quantization scales. The input is one feature per
// (color, piece, square) triple, from each side's perspective.
const (
	InputSize = board.ColorCount * board.PieceCount * board.SquareCount // 768
	L1Size    = 768

	InputScale  = 255
	OutputScale = 64
)

// Network holds the quantized weights.
type Network struct {
	L1Weights     [InputSize][L1Size]int16
	L1Biases      [L1Size]int16
	OutputWeights [board.ColorCount][L1Size]int16
	OutputBias    int16
}

// Forward computes the evaluation from an accumulator, in centipawn-like
// units from the side to move's point of view. The side to move's
// perspective is summed first.
func (n *Network) Forward(acc *Accumulator, stm board.Color) int {
	perspectives := [2]*[L1Size]int16{&acc.Sums[stm], &acc.Sums[stm.Flip()]}

	sum := int64(n.OutputBias)
	for p, row := range perspectives {
		weights := &n.OutputWeights[p]
		for i := 0; i < L1Size; i++ {
			sum += int64(clippedReLU(row[i])) * int64(weights[i])
		}
	}

	return int(sum * 400 / (InputScale * OutputScale))
}

// clippedReLU clamps a neuron sum to [0, InputScale].
func clippedReLU(x int16) int16 {
	if x < 0 {
		return 0
	}
	if x > InputScale {
		return InputScale
	}
	return x
}

// Weight file header. Little-endian, followed by the raw int16 blob:
// l1 weights, l1 biases, output weights, output bias.
const (
	fileMagic   = 0x474E4554 // "GNET"
	fileVersion = 1
)

type fileHeader struct {
	Magic       uint32
	Version     uint32
	L1Size      uint32
	InputScale  uint16
	OutputScale uint16
}

// LoadFile reads network weights from a binary file, validating the header
// against the compiled-in architecture.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights file: %w", err)
	}
	defer f.Close()

	var header fileHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read weights header: %w", err)
	}
	if header.Magic != fileMagic {
		return nil, fmt.Errorf("bad magic: %#x", header.Magic)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported version: %d", header.Version)
	}
	if header.L1Size != L1Size {
		return nil, fmt.Errorf("L1 size mismatch: file has %d, engine built for %d", header.L1Size, L1Size)
	}
	if header.InputScale != InputScale || header.OutputScale != OutputScale {
		return nil, fmt.Errorf("scale mismatch: file has %d/%d", header.InputScale, header.OutputScale)
	}

	net := &Network{}
	if err := binary.Read(f, binary.LittleEndian, &net.L1Weights); err != nil {
		return nil, fmt.Errorf("read l1 weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &net.L1Biases); err != nil {
		return nil, fmt.Errorf("read l1 biases: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &net.OutputWeights); err != nil {
		return nil, fmt.Errorf("read output weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &net.OutputBias); err != nil {
		return nil, fmt.Errorf("read output bias: %w", err)
	}

	return net, nil
}

// Piece values used by the built-in material network, in centipawns.
var materialValues = [board.PieceCount]int32{300, 310, 500, 900, 100, 0}

// Material network quantization: each piece contributes countScale to one
// counting neuron, and the output weight converts the neuron back to
// centipawns through the fixed forward scaling.
const countScale = 25

// NewMaterialNetwork builds the default built-in network. It dedicates one
// neuron per (relative color, piece) pair counting pieces, with output
// weights chosen so the evaluation equals the material balance from the
// side to move's perspective. The engine is playable without any weight
// file; a trained network loaded via EvalFile replaces it.
func NewMaterialNetwork() *Network {
	net := &Network{}

	for idx := 0; idx < InputSize; idx++ {
		relColor := idx / (board.PieceCount * board.SquareCount)
		piece := (idx % (board.PieceCount * board.SquareCount)) / board.SquareCount
		neuron := relColor*board.PieceCount + piece
		net.L1Weights[idx][neuron] = countScale
	}

	// Output row 0 applies to the side to move's perspective: its own
	// pieces count positively, the opponent's negatively. Row 1 is unused.
	for piece := 0; piece < board.PieceCount; piece++ {
		// weight w yields countScale*w*400/(255*64) centipawns per piece
		w := int16(materialValues[piece] * InputScale * OutputScale / (400 * countScale))
		net.OutputWeights[0][piece] = w
		net.OutputWeights[0][board.PieceCount+piece] = -w
	}

	return net
}
