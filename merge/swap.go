package merge

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/irutil"
)

// SwapResult lists the names swapped in, in plan order
type SwapResult struct {
	// Replaced are the names whose destination function was replaced
	Replaced []string

	// Added are the names the destination did not have before
	Added []string
}

// Swap puts every imported staged function in place of the destination's old
// function of the same name.  For each one, all uses of the old function are
// redirected to the new one, the old function is erased, and the new one is
// renamed to the original name, in that order
func Swap(dst *ir.Module, staging *Staging) (*SwapResult, error) {
	result := &SwapResult{}

	for _, sf := range staging.Funcs {
		newFunc := irutil.FindFunc(dst, sf.StagingName)
		if newFunc == nil {
			continue
		}

		if oldFunc := irutil.FindFunc(dst, sf.Name); oldFunc != nil {
			if err := rebindBlockAddresses(dst, oldFunc, newFunc); err != nil {
				return nil, err
			}

			irutil.ReplaceAllUsesWith(dst, oldFunc, newFunc)

			if n := irutil.CountUses(dst, oldFunc); n != 0 {
				return nil, fmt.Errorf("@%s still has %d uses after they were redirected", sf.Name, n)
			}

			irutil.RemoveFunc(dst, oldFunc)
			result.Replaced = append(result.Replaced, sf.Name)
		} else {
			result.Added = append(result.Added, sf.Name)
		}

		newFunc.SetName(sf.Name)
	}

	return result, nil
}

// rebindBlockAddresses points the blockaddress constants taken of blocks of
// oldFunc at the blocks of the same name in newFunc.  Their function operand
// is redirected along with every other use
func rebindBlockAddresses(dst *ir.Module, oldFunc, newFunc *ir.Func) error {
	addrs := irutil.BlockAddresses(dst, oldFunc)
	blocks := make([]*ir.Block, len(addrs))

	for i, ba := range addrs {
		name := ba.Block.Name()
		if blocks[i] = irutil.FindBlock(newFunc, name); blocks[i] == nil {
			return fmt.Errorf("@%s has no block %%%s for a blockaddress to refer to", oldFunc.Name(), name)
		}
	}

	for i, ba := range addrs {
		ba.Block = blocks[i]
	}

	return nil
}

// CheckClean returns an error if any staging name is still bound in m after
// the swap
func CheckClean(m *ir.Module, staging *Staging) error {
	for _, sf := range staging.Funcs {
		if irutil.FindGlobalValue(m, sf.StagingName) != nil {
			return fmt.Errorf("staging symbol @%s leaked into the merged module", sf.StagingName)
		}
	}

	return nil
}
